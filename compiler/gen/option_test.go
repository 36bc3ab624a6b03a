package gen

import (
	"errors"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "Custom header", c.Header)
	})

	t.Run("empty header falls back to the default", func(t *testing.T) {
		c, err := NewConfig(WithPackage("shop"), WithHeader(""))

		require.NoError(t, err)
		assert.Equal(t, DefaultHeader, c.Header)
	})
}

func TestWithPackage(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"simple", "shop", false},
		{"dotted", "shop.v1", false},
		{"underscore", "my_shop.v1", false},
		{"empty", "", true},
		{"leading dot", ".shop", true},
		{"trailing dot", "shop.", true},
		{"slash", "example.com/shop", true},
		{"leading digit", "shop.1v", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithPackage(tt.pkg)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pkg, c.Package)
		})
	}
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(4)(c))
	assert.Equal(t, 4, c.Workers)
	assert.True(t, IsConfigError(WithWorkers(-1)(c)))
}

func TestWithAccessors(t *testing.T) {
	c, err := NewConfig(WithPackage("shop"), WithAccessors("example.com/shop/model", ""))
	require.NoError(t, err)
	assert.True(t, c.Accessors.Enabled)
	assert.Equal(t, "model", c.Accessors.Package)

	assert.True(t, IsConfigError(WithAccessors("", "model")(c)))
}

func TestWithSnapshot(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithSnapshot(true)(c))
	assert.True(t, c.Snapshot)
	assert.True(t, c.StrictStability)
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	l := slog.New(slog.DiscardHandler)
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Logger)
	assert.True(t, IsConfigError(WithLogger(nil)(c)))
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig(WithPackage("shop"))
		require.NoError(t, err)
		assert.Equal(t, "service", c.Name)
		assert.Equal(t, runtime.GOMAXPROCS(0), c.Workers)
		assert.NotNil(t, c.Logger)
	})

	t.Run("package is required", func(t *testing.T) {
		_, err := NewConfig()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("MustNewConfig panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewConfig(WithTarget("")) })
	})
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithTarget(""), WithName("api"), WithPackage(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config target: target directory cannot be empty")
	assert.Contains(t, err.Error(), "config package: package cannot be empty")
	assert.Equal(t, "api", c.Name)
}
