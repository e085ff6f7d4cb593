package lasf

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/internal/options"
)

// DefaultBatchSize is the number of records Read returns when asked for n <= 0.
const DefaultBatchSize = 4096

var discardLogger = slog.New(slog.DiscardHandler)

// InconsistencyHandler decides what happens to a header field that disagrees with the
// point format, the version or the stream layout. Returning nil tolerates the issue and
// the reader records it as a warning; returning an error aborts NewReader.
type InconsistencyHandler func(issue *errs.InconsistentHeaderError) error

// ReaderConfig holds the Reader settings.
type ReaderConfig struct {
	handler   InconsistencyHandler
	logger    *slog.Logger
	workers   int
	batchSize int
}

// ReaderOption configures a Reader.
//
// This is a type alias for the generic Option interface specialized for ReaderConfig.
type ReaderOption = options.Option[*ReaderConfig]

func newReaderConfig(opts []ReaderOption) (*ReaderConfig, error) {
	cfg := &ReaderConfig{
		logger:    discardLogger,
		workers:   1,
		batchSize: DefaultBatchSize,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithStrictHeader makes every header inconsistency fatal.
func WithStrictHeader() ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.handler = func(issue *errs.InconsistentHeaderError) error {
			return issue
		}
	})
}

// WithInconsistencyHandler installs a custom handler for header inconsistencies.
// A nil handler restores the lenient default.
func WithInconsistencyHandler(h InconsistencyHandler) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.handler = h
	})
}

// WithLogger sets the logger used for tolerated inconsistencies. Defaults to discarding.
func WithLogger(logger *slog.Logger) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		if logger == nil {
			logger = discardLogger
		}
		c.logger = logger
	})
}

// WithWorkers sets the number of goroutines ReadAll decodes with.
func WithWorkers(n int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidWorkers, n)
		}
		c.workers = n

		return nil
	})
}

// WithBatchSize sets the default number of records returned by Read and scanned per
// step by ReadWithin.
func WithBatchSize(n int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if n <= 0 {
			return errs.OutOfRange("batch size", int64(n), 1, math.MaxInt32)
		}
		c.batchSize = n

		return nil
	})
}
