// Package metadata persists command specifications and produces missing ones
// by running a help scanner.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/temirov/shellhint/internal/cmdspec"
)

const (
	commandKeyPrefix          = "command/"
	storeDirectoryPermissions = 0o750
	defaultCacheEntries       = 4096
	cacheCountersPerEntry     = 10
	cacheBufferItems          = 64

	openStoreErrorFormat    = "open command store %s: %w"
	createStoreErrorFormat  = "create command store directory %s: %w"
	cacheErrorFormat        = "create command cache: %w"
	readCommandErrorFormat  = "read command %s: %w"
	writeCommandErrorFormat = "write command %s: %w"
	encodeCommandFormat     = "encode command %s: %w"
	commandErrorFormat      = "%w: %s"
)

// ErrCommandNotFound indicates a name without a stored specification.
var ErrCommandNotFound = errors.New("metadata: command not found")

// StoreOptions configure a Store.
type StoreOptions struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path         string
	InMemory     bool
	CacheEntries int64
}

// Store keeps command specifications in badger, keyed by command name, with a
// ristretto layer holding recently decoded specifications.
type Store struct {
	database *badger.DB
	cache    *ristretto.Cache[string, cmdspec.Command]
}

// OpenStore opens or creates the store described by options.
func OpenStore(options StoreOptions) (*Store, error) {
	var badgerOptions badger.Options
	if options.InMemory {
		badgerOptions = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if mkdirError := os.MkdirAll(options.Path, storeDirectoryPermissions); mkdirError != nil {
			return nil, fmt.Errorf(createStoreErrorFormat, options.Path, mkdirError)
		}
		badgerOptions = badger.DefaultOptions(filepath.Clean(options.Path))
	}
	badgerOptions = badgerOptions.WithNumVersionsToKeep(1).WithLogger(nil)

	database, openError := badger.Open(badgerOptions)
	if openError != nil {
		return nil, fmt.Errorf(openStoreErrorFormat, options.Path, openError)
	}

	cacheEntries := options.CacheEntries
	if cacheEntries <= 0 {
		cacheEntries = defaultCacheEntries
	}
	cache, cacheError := ristretto.NewCache(&ristretto.Config[string, cmdspec.Command]{
		NumCounters: cacheEntries * cacheCountersPerEntry,
		MaxCost:     cacheEntries,
		BufferItems: cacheBufferItems,
	})
	if cacheError != nil {
		_ = database.Close()
		return nil, fmt.Errorf(cacheErrorFormat, cacheError)
	}
	return &Store{database: database, cache: cache}, nil
}

// Get returns the specification stored under name.
func (store *Store) Get(name string) (cmdspec.Command, error) {
	if command, cached := store.cache.Get(name); cached {
		return command, nil
	}

	var command cmdspec.Command
	viewError := store.database.View(func(transaction *badger.Txn) error {
		item, getError := transaction.Get(commandKey(name))
		if errors.Is(getError, badger.ErrKeyNotFound) {
			return fmt.Errorf(commandErrorFormat, ErrCommandNotFound, name)
		}
		if getError != nil {
			return getError
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &command)
		})
	})
	if viewError != nil {
		if errors.Is(viewError, ErrCommandNotFound) {
			return cmdspec.Command{}, viewError
		}
		return cmdspec.Command{}, fmt.Errorf(readCommandErrorFormat, name, viewError)
	}
	store.remember(command)
	return command, nil
}

// Has reports whether a specification is stored under name.
func (store *Store) Has(name string) (bool, error) {
	_, getError := store.Get(name)
	if errors.Is(getError, ErrCommandNotFound) {
		return false, nil
	}
	return getError == nil, getError
}

// Put validates command and stores it under its name, replacing any previous entry.
func (store *Store) Put(command cmdspec.Command) error {
	if validationError := cmdspec.Validate(command); validationError != nil {
		return validationError
	}
	encoded, encodeError := json.Marshal(command)
	if encodeError != nil {
		return fmt.Errorf(encodeCommandFormat, command.Name, encodeError)
	}
	updateError := store.database.Update(func(transaction *badger.Txn) error {
		return transaction.Set(commandKey(command.Name), encoded)
	})
	if updateError != nil {
		return fmt.Errorf(writeCommandErrorFormat, command.Name, updateError)
	}
	store.remember(command)
	return nil
}

// Remove deletes the specification stored under name.
func (store *Store) Remove(name string) error {
	exists, hasError := store.Has(name)
	if hasError != nil {
		return hasError
	}
	if !exists {
		return fmt.Errorf(commandErrorFormat, ErrCommandNotFound, name)
	}
	deleteError := store.database.Update(func(transaction *badger.Txn) error {
		return transaction.Delete(commandKey(name))
	})
	store.cache.Del(name)
	if deleteError != nil {
		return fmt.Errorf(writeCommandErrorFormat, name, deleteError)
	}
	return nil
}

// Names lists every stored command name in lexical order.
func (store *Store) Names() ([]string, error) {
	var names []string
	prefix := []byte(commandKeyPrefix)
	viewError := store.database.View(func(transaction *badger.Txn) error {
		iteratorOptions := badger.DefaultIteratorOptions
		iteratorOptions.PrefetchValues = false
		iteratorOptions.Prefix = prefix

		iterator := transaction.NewIterator(iteratorOptions)
		defer iterator.Close()
		for iterator.Seek(prefix); iterator.ValidForPrefix(prefix); iterator.Next() {
			names = append(names, strings.TrimPrefix(string(iterator.Item().Key()), commandKeyPrefix))
		}
		return nil
	})
	if viewError != nil {
		return nil, viewError
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the cache and the database.
func (store *Store) Close() error {
	store.cache.Close()
	return store.database.Close()
}

func (store *Store) remember(command cmdspec.Command) {
	store.cache.Set(command.Name, command, 1)
	store.cache.Wait()
}

func commandKey(name string) []byte {
	return []byte(commandKeyPrefix + name)
}
