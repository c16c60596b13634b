package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrorTypeConfig, "missing required configuration"),
			want: "config: missing required configuration",
		},
		{
			name: "with cause",
			err:  Wrap(fmt.Errorf("dial tcp: refused"), ErrorTypeConnection, "failed to reach source"),
			want: "connection: failed to reach source: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeData, "should vanish"))
}

func TestUnwrapChain(t *testing.T) {
	root := stderrors.New("cursor closed")
	wrapped := Wrap(root, ErrorTypeData, "failed to read collection")

	require.ErrorIs(t, wrapped, root)
	assert.Equal(t, root, wrapped.Unwrap())
}

func TestIsType(t *testing.T) {
	inner := New(ErrorTypeAuthentication, "token rejected")
	outer := Wrap(inner, ErrorTypeConnection, "destination unavailable")

	// The outermost type wins; the inner one stays reachable via As.
	assert.True(t, IsType(outer, ErrorTypeConnection))
	assert.False(t, IsType(outer, ErrorTypeUpload))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeConnection))
	assert.False(t, IsType(nil, ErrorTypeConnection))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeUpload, "write rejected").
		WithDetail("unit", "orders").
		WithDetail("attempt", 1)

	require.NotNil(t, err.Details)
	assert.Equal(t, "orders", err.Details["unit"])
	assert.Equal(t, 1, err.Details["attempt"])
}

func TestFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "config", err: New(ErrorTypeConfig, "missing keys"), want: true},
		{name: "connection", err: New(ErrorTypeConnection, "unreachable"), want: true},
		{name: "authentication", err: New(ErrorTypeAuthentication, "bad token"), want: true},
		{name: "not found", err: New(ErrorTypeNotFound, "no such container"), want: true},
		{name: "data is unit scoped", err: New(ErrorTypeData, "bad record"), want: false},
		{name: "timeout is unit scoped", err: New(ErrorTypeTimeout, "deadline"), want: false},
		{name: "upload is unit scoped", err: New(ErrorTypeUpload, "write failed"), want: false},
		{name: "plain error", err: stderrors.New("plain"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fatal(tt.err))
		})
	}
}
