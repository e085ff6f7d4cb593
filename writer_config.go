package lasf

import (
	"log/slog"
	"time"

	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/options"
	"github.com/arloliu/lasf/quant"
	"github.com/arloliu/lasf/section"
)

// WriterConfig holds the Writer settings. Header fields are collected in a
// section.HeaderBuilder; invalid values are reported by NewWriter.
type WriterConfig struct {
	builder  *section.HeaderBuilder
	params   *quant.Params
	estimate []quant.EstimateOption
	logger   *slog.Logger
}

// WriterOption configures a Writer.
//
// This is a type alias for the generic Option interface specialized for WriterConfig.
type WriterOption = options.Option[*WriterConfig]

func newWriterConfig(f format.PointFormat, opts []WriterOption) (*WriterConfig, error) {
	cfg := &WriterConfig{
		builder: section.NewHeaderBuilder(f).GeneratingSoftware(DefaultGeneratingSoftware),
		logger:  discardLogger,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithVersion sets the LAS minor version (LAS 1.minor). Defaults to the lowest version
// that supports the point format, but never below 1.2.
func WithVersion(minor uint8) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.Version(minor)
	})
}

// WithSystemIdentifier sets the header system identifier (at most 32 bytes).
func WithSystemIdentifier(s string) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.SystemIdentifier(s)
	})
}

// WithGeneratingSoftware sets the header generating software (at most 32 bytes).
func WithGeneratingSoftware(s string) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.GeneratingSoftware(s)
	})
}

// WithCreationDate sets the header creation day of year and year.
func WithCreationDate(t time.Time) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.CreationDate(t)
	})
}

// WithFileSourceID sets the header file source id.
func WithFileSourceID(id uint16) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.FileSourceID(id)
	})
}

// WithGlobalEncoding sets the header global encoding bits, see section.GlobalEncoding*.
func WithGlobalEncoding(bits uint16) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.GlobalEncoding(bits)
	})
}

// WithProjectID sets the header project GUID.
func WithProjectID(id section.ProjectID) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.builder.ProjectID(id)
	})
}

// WithQuantization fixes scale and offset up front and switches the Writer to streaming
// mode: records are encoded as they are added instead of being buffered until Finish.
func WithQuantization(p quant.Params) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if err := p.Validate(); err != nil {
			return err
		}
		c.params = &p
		c.builder.Quantization(p)

		return nil
	})
}

// WithEstimateOptions tunes the scale/offset estimation done by Finish in buffered mode.
func WithEstimateOptions(opts ...quant.EstimateOption) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.estimate = append(c.estimate, opts...)
	})
}

// WithWriterLogger sets the logger for writer diagnostics. Defaults to discarding.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		if logger == nil {
			logger = discardLogger
		}
		c.logger = logger
	})
}
