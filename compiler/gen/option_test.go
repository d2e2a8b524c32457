package gen

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader, cfg.Header)
	assert.Equal(t, DefaultSuffix, cfg.Suffix)
	assert.Empty(t, cfg.Target)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
}

func TestOptions(t *testing.T) {
	t.Run("WithHeader", func(t *testing.T) {
		cfg, err := NewConfig(WithHeader("Code generated by example. DO NOT EDIT."))
		require.NoError(t, err)
		assert.Equal(t, "Code generated by example. DO NOT EDIT.", cfg.Header)

		_, err = NewConfig(WithHeader(""))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("WithTarget", func(t *testing.T) {
		cfg, err := NewConfig(WithTarget("out"))
		require.NoError(t, err)
		assert.Equal(t, "out", cfg.Target)

		_, err = NewConfig(WithTarget(""))
		require.Error(t, err)
	})

	t.Run("WithSuffix", func(t *testing.T) {
		cfg, err := NewConfig(WithSuffix("_gen.go"))
		require.NoError(t, err)
		assert.Equal(t, "_gen.go", cfg.Suffix)

		_, err = NewConfig(WithSuffix("_gen.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must end in .go")

		_, err = NewConfig(WithSuffix("_test.go"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not mark generated files as tests")
	})

	t.Run("WithWorkers", func(t *testing.T) {
		cfg, err := NewConfig(WithWorkers(2))
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Workers)

		_, err = NewConfig(WithWorkers(0))
		require.Error(t, err)
	})
}
