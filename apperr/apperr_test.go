package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{name: "validation passes through", err: Validation("Cart is empty"), kind: KindValidation, message: "Cart is empty"},
		{name: "wrapped conflict passes through", err: fmt.Errorf("saving: %w", Conflict("Brand already exists")), kind: KindConflict, message: "Brand already exists"},
		{name: "foreign error is hidden", err: errors.New("dial tcp: connection refused"), kind: KindUnexpected, message: GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handled := Handle(tt.err)
			var appErr *Error
			require.ErrorAs(t, handled, &appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestHandleNil(t *testing.T) {
	assert.NoError(t, Handle(nil))
}

func TestUnexpectedMatchesSentinel(t *testing.T) {
	handled := Handle(errors.New("boom"))
	assert.ErrorIs(t, handled, ErrUnexpected)
	assert.NotContains(t, handled.Error(), "boom")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("Product not found")))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("x")))
	assert.True(t, IsKind(Forbidden("no"), KindForbidden))
	assert.False(t, IsKind(Forbidden("no"), KindConflict))
}
