package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/shellhint/internal/cmdspec"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, openError := OpenStore(StoreOptions{InMemory: true, CacheEntries: 16})
	require.NoError(t, openError)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func curlCommand() cmdspec.Command {
	return cmdspec.Command{
		Name:        "curl",
		Description: "transfer a URL",
		Options: []cmdspec.Option{
			{Names: []string{"-k", "--insecure"}, Description: "Allow insecure server connections"},
		},
	}
}

func TestStorePutGetRemove(t *testing.T) {
	store := openTestStore(t)

	_, getError := store.Get("curl")
	assert.ErrorIs(t, getError, ErrCommandNotFound)

	require.NoError(t, store.Put(curlCommand()))
	require.NoError(t, store.Put(cmdspec.Command{Name: "awk"}))

	stored, getError := store.Get("curl")
	require.NoError(t, getError)
	assert.Equal(t, curlCommand(), stored)

	names, namesError := store.Names()
	require.NoError(t, namesError)
	assert.Equal(t, []string{"awk", "curl"}, names)

	require.NoError(t, store.Remove("curl"))
	_, getError = store.Get("curl")
	assert.ErrorIs(t, getError, ErrCommandNotFound)
	assert.ErrorIs(t, store.Remove("curl"), ErrCommandNotFound)
}

func TestStoreRejectsInvalidCommand(t *testing.T) {
	store := openTestStore(t)

	putError := store.Put(cmdspec.Command{Description: "nameless"})
	assert.ErrorIs(t, putError, cmdspec.ErrInvalidCommand)

	names, namesError := store.Names()
	require.NoError(t, namesError)
	assert.Empty(t, names)
}

func TestStorePersistsOnDisk(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "nested", "commands.db")

	store, openError := OpenStore(StoreOptions{Path: storePath})
	require.NoError(t, openError)
	require.NoError(t, store.Put(curlCommand()))
	require.NoError(t, store.Close())

	reopened, reopenError := OpenStore(StoreOptions{Path: storePath})
	require.NoError(t, reopenError)
	defer reopened.Close()

	stored, getError := reopened.Get("curl")
	require.NoError(t, getError)
	assert.Equal(t, "transfer a URL", stored.Description)
}

func TestLoadBundleFormats(t *testing.T) {
	directory := t.TempDir()

	jsonPath := filepath.Join(directory, "bundle.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"name":"git","description":"the stupid content tracker"},{"name":"ls"}]`), 0o600))

	yamlPath := filepath.Join(directory, "bundle.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: tar\noptions:\n  - names: [\"-x\", \"--extract\"]\n    description: extract\n"), 0o600))

	gzipPath := filepath.Join(directory, "bundle.json.gz")
	gzipFile, createError := os.Create(gzipPath)
	require.NoError(t, createError)
	gzipWriter := gzip.NewWriter(gzipFile)
	_, writeError := gzipWriter.Write([]byte(`{"name":"conda"}`))
	require.NoError(t, writeError)
	require.NoError(t, gzipWriter.Close())
	require.NoError(t, gzipFile.Close())

	testCases := []struct {
		name          string
		path          string
		expectedNames []string
	}{
		{name: "json_array", path: jsonPath, expectedNames: []string{"git", "ls"}},
		{name: "yaml_mapping", path: yamlPath, expectedNames: []string{"tar"}},
		{name: "gzip_json", path: gzipPath, expectedNames: []string{"conda"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			commands, loadError := LoadBundle(testCase.path)
			require.NoError(t, loadError)
			names := make([]string, 0, len(commands))
			for _, command := range commands {
				names = append(names, command.Name)
			}
			assert.Equal(t, testCase.expectedNames, names)
		})
	}
}

func TestLoadBundleRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.txt")
	require.NoError(t, os.WriteFile(path, []byte("curl"), 0o600))

	_, loadError := LoadBundle(path)
	assert.ErrorIs(t, loadError, ErrUnsupportedBundle)
}

func TestImportSkipsExistingUnlessForced(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Put(curlCommand()))

	replacement := cmdspec.Command{Name: "curl", Description: "replaced"}
	bundle := []cmdspec.Command{replacement, {Name: "wget"}}

	report, importError := store.Import(bundle, false)
	require.NoError(t, importError)
	assert.Equal(t, []string{"wget"}, report.Imported)
	assert.Equal(t, []string{"curl"}, report.Skipped)

	stored, _ := store.Get("curl")
	assert.Equal(t, "transfer a URL", stored.Description)

	report, importError = store.Import(bundle, true)
	require.NoError(t, importError)
	assert.Equal(t, []string{"curl", "wget"}, report.Imported)
	assert.Empty(t, report.Skipped)

	stored, _ = store.Get("curl")
	assert.Equal(t, "replaced", stored.Description)
}
