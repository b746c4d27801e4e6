package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := Newf(KindNotFound, "product %d not found", 7)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "product 7 not found", err.Error())

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindInsufficientStock, "have 1, need 5")
	outer := fmt.Errorf("creating bill: %w", inner)

	assert.True(t, IsKind(outer, KindInsufficientStock))
	assert.False(t, IsKind(outer, KindNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindDataIntegrity, "compensation failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "compensation failed: connection reset", err.Error())
	assert.Equal(t, KindDataIntegrity, KindOf(err))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	a := New(KindConflict, "first")
	b := New(KindConflict, "second")
	c := New(KindNotFound, "third")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "INSUFFICIENT_STOCK", KindInsufficientStock.String())
	assert.Equal(t, "UNKNOWN", KindUnknown.String())
}
