package pipelineerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NotFound("input to provide").ExitCode())
	assert.Equal(t, 1, HTTPError(503).ExitCode())
	assert.Equal(t, 1, New(KindJaqStrError, "x").ExitCode())
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	t.Parallel()

	base := NotFound("Any content")
	wrapped := fmt.Errorf("jaq failed: %w", base)

	pe, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, pe.Kind)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	kind, ok := KindOf(HTTPError(404))
	assert.True(t, ok)
	assert.Equal(t, KindHTTPError, kind)

	_, ok = KindOf(errors.New("plain error"))
	assert.False(t, ok)
}

func TestWrapUnwraps(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	wrapped := Wrap(KindStdIOError, "reading file", base)

	assert.ErrorIs(t, wrapped, base)
}
