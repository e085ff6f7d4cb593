package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type scaleConfig struct {
	scale float64
	name  string
	calls []string
}

func withScale(s float64) Option[*scaleConfig] {
	return New(func(c *scaleConfig) error {
		if s <= 0 {
			return errors.New("scale must be positive")
		}
		c.scale = s
		c.calls = append(c.calls, "scale")

		return nil
	})
}

func withName(name string) Option[*scaleConfig] {
	return NoError(func(c *scaleConfig) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &scaleConfig{}
		err := Apply(cfg, withName("a"), withScale(0.01), withName("b"))

		require.NoError(t, err)
		require.Equal(t, 0.01, cfg.scale)
		require.Equal(t, "b", cfg.name)
		require.Equal(t, []string{"name", "scale", "name"}, cfg.calls)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &scaleConfig{}
		err := Apply(cfg, withScale(-1), withName("never"))

		require.Error(t, err)
		require.Contains(t, err.Error(), "scale must be positive")
		require.Empty(t, cfg.name)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &scaleConfig{}
		require.NoError(t, Apply(cfg))
		require.Empty(t, cfg.calls)
	})
}
