package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/connector/core"
	"github.com/lakeferry/lakeferry/pkg/errors"
	"github.com/lakeferry/lakeferry/pkg/tabular"
)

type stubSource struct{}

func (s *stubSource) Open(context.Context) error                { return nil }
func (s *stubSource) ListUnits(context.Context) ([]string, error) { return nil, nil }
func (s *stubSource) Extract(context.Context, string) (*tabular.Batch, error) {
	return tabular.NewBatch("_id"), nil
}
func (s *stubSource) Close(context.Context) error { return nil }

type stubDestination struct{}

func (d *stubDestination) Open(context.Context) error { return nil }
func (d *stubDestination) EnsureBatchDirectory(context.Context) (string, error) {
	return "base/20240101_120000", nil
}
func (d *stubDestination) Upload(context.Context, string, string, []byte) error { return nil }
func (d *stubDestination) Close(context.Context) error                          { return nil }

func TestRegisterAndCreate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterSource("stub", func(*config.Config) (core.Source, error) {
		return &stubSource{}, nil
	}))
	require.NoError(t, r.RegisterDestination("stub", func(*config.Config) (core.Destination, error) {
		return &stubDestination{}, nil
	}))

	src, err := r.CreateSource("stub", &config.Config{})
	require.NoError(t, err)
	assert.NotNil(t, src)

	dest, err := r.CreateDestination("stub", &config.Config{})
	require.NoError(t, err)
	assert.NotNil(t, dest)

	assert.True(t, r.HasSource("stub"))
	assert.True(t, r.HasDestination("stub"))
	assert.Equal(t, []string{"stub"}, r.ListSources())
	assert.Equal(t, []string{"stub"}, r.ListDestinations())
}

func TestDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	factory := func(*config.Config) (core.Source, error) { return &stubSource{}, nil }

	require.NoError(t, r.RegisterSource("stub", factory))

	err := r.RegisterSource("stub", factory)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCreateUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.CreateSource("nope", &config.Config{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = r.CreateDestination("nope", &config.Config{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCreateWrapsFactoryError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource("broken", func(*config.Config) (core.Source, error) {
		return nil, fmt.Errorf("bad credentials shape")
	}))

	_, err := r.CreateSource("broken", &config.Config{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "bad credentials shape")
}

func TestClear(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource("stub", func(*config.Config) (core.Source, error) {
		return &stubSource{}, nil
	}))

	r.Clear()

	assert.False(t, r.HasSource("stub"))
	assert.Empty(t, r.ListSources())
}

func TestGlobalRegistry(t *testing.T) {
	// Connector packages self-register via init; this package does not
	// import them, so register a throwaway type against the global
	// instance instead.
	require.NoError(t, RegisterSource("registry-test-source", func(*config.Config) (core.Source, error) {
		return &stubSource{}, nil
	}))

	src, err := CreateSource("registry-test-source", &config.Config{})
	require.NoError(t, err)
	assert.NotNil(t, src)
	assert.Contains(t, ListSources(), "registry-test-source")
	assert.Same(t, globalRegistry, GetRegistry())
}
