package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/temirov/shellhint/internal/cmdspec"
)

const (
	minimumNameLength = 2

	defaultRatePerSecond = 2
	defaultBurst         = 4

	sharedScanTimeout = time.Minute

	lookupOutcomeLabel    = "outcome"
	lookupOutcomeHit      = "store_hit"
	lookupOutcomeScanned  = "scanned"
	lookupOutcomeFailed   = "scan_failed"
	lookupOutcomeRejected = "rejected"

	nameTooShortFormat = "%w: %q"
	waitErrorFormat    = "scan %s: %w"

	logFieldName            = "name"
	logMessageScanned       = "command scanned"
	logMessageScanError     = "command scan failed"
	logMessageScanAbandoned = "stopped waiting for command scan"
)

// ErrNameTooShort indicates a name too short to be worth scanning.
var ErrNameTooShort = errors.New("metadata: command name too short")

// FetcherOptions configure a Fetcher.
type FetcherOptions struct {
	RatePerSecond float64
	Burst         int
	// Registerer receives the lookup counters. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	Logger     *zap.Logger
}

// Fetcher serves command specifications from the Store and scans missing ones.
// Concurrent fetches of one name share a single scan; scans are rate limited.
type Fetcher struct {
	store    *Store
	scanner  Scanner
	limiter  *rate.Limiter
	group    singleflight.Group
	lookups  *prometheus.CounterVec
	scanTime prometheus.Histogram
	logger   *zap.Logger
}

// NewFetcher constructs a Fetcher over store and scanner.
func NewFetcher(store *Store, scanner Scanner, options FetcherOptions) *Fetcher {
	ratePerSecond := options.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = defaultRatePerSecond
	}
	burst := options.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(options.Registerer)
	return &Fetcher{
		store:   store,
		scanner: scanner,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shellhint_metadata_lookups_total",
			Help: "Command specification lookups by outcome.",
		}, []string{lookupOutcomeLabel}),
		scanTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shellhint_metadata_scan_seconds",
			Help:    "Duration of help scanner runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		logger: logger,
	}
}

// Fetch returns the specification for name, scanning and storing it when absent.
func (fetcher *Fetcher) Fetch(ctx context.Context, name string) (cmdspec.Command, error) {
	if utf8.RuneCountInString(name) < minimumNameLength {
		fetcher.lookups.WithLabelValues(lookupOutcomeRejected).Inc()
		return cmdspec.Command{}, fmt.Errorf(nameTooShortFormat, ErrNameTooShort, name)
	}
	command, getError := fetcher.store.Get(name)
	if getError == nil {
		fetcher.lookups.WithLabelValues(lookupOutcomeHit).Inc()
		return command, nil
	}
	if !errors.Is(getError, ErrCommandNotFound) {
		return cmdspec.Command{}, getError
	}
	return fetcher.scanShared(ctx, name)
}

// Scan runs the scanner for name even when a specification is stored, and
// replaces the stored one.
func (fetcher *Fetcher) Scan(ctx context.Context, name string) (cmdspec.Command, error) {
	if utf8.RuneCountInString(name) < minimumNameLength {
		return cmdspec.Command{}, fmt.Errorf(nameTooShortFormat, ErrNameTooShort, name)
	}
	return fetcher.scanShared(ctx, name)
}

// Names lists stored command names.
func (fetcher *Fetcher) Names(context.Context) ([]string, error) {
	return fetcher.store.Names()
}

// Put stores command.
func (fetcher *Fetcher) Put(command cmdspec.Command) error {
	return fetcher.store.Put(command)
}

// Remove deletes the stored specification of name.
func (fetcher *Fetcher) Remove(name string) error {
	return fetcher.store.Remove(name)
}

// scanShared runs one scan per name at a time. The shared scan is detached
// from the caller that started it; each caller stops waiting on its own context.
func (fetcher *Fetcher) scanShared(ctx context.Context, name string) (cmdspec.Command, error) {
	resultChannel := fetcher.group.DoChan(name, func() (interface{}, error) {
		scanContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedScanTimeout)
		defer cancel()
		if waitError := fetcher.limiter.Wait(scanContext); waitError != nil {
			return cmdspec.Command{}, fmt.Errorf(waitErrorFormat, name, waitError)
		}
		timer := prometheus.NewTimer(fetcher.scanTime)
		scanned, runError := fetcher.scanner.Scan(scanContext, name)
		timer.ObserveDuration()
		if runError != nil {
			return cmdspec.Command{}, runError
		}
		if putError := fetcher.store.Put(scanned); putError != nil {
			return cmdspec.Command{}, putError
		}
		return scanned, nil
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		fetcher.logger.Debug(logMessageScanAbandoned, zap.String(logFieldName, name), zap.Error(ctx.Err()))
		return cmdspec.Command{}, fmt.Errorf(waitErrorFormat, name, ctx.Err())
	case result = <-resultChannel:
	}
	if result.Err != nil {
		fetcher.lookups.WithLabelValues(lookupOutcomeFailed).Inc()
		fetcher.logger.Warn(logMessageScanError, zap.String(logFieldName, name), zap.Error(result.Err))
		return cmdspec.Command{}, result.Err
	}
	fetcher.lookups.WithLabelValues(lookupOutcomeScanned).Inc()
	fetcher.logger.Debug(logMessageScanned, zap.String(logFieldName, name))
	return result.Val.(cmdspec.Command), nil
}
