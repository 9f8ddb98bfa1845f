package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("sending turn: %w", InferenceFailed(base))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindInferenceFailed, kind)
	assert.True(t, errors.Is(err, base))
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, 404},
		{KindUnauthorized, 401},
		{KindConflict, 409},
		{KindInferenceFailed, 502},
		{KindValidationFailed, 400},
		{KindPersistenceFailed, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bot not found", NotFound("bot not found").Error())

	wrapped := PersistenceFailed(errors.New("disk full"))
	assert.Equal(t, "failed to persist record: disk full", wrapped.Error())
}
