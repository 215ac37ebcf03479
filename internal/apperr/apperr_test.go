package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad", "x")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("gone"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestUnauthenticatedDetail(t *testing.T) {
	err := Unauthenticated("no token")
	assert.Equal(t, []string{"no token"}, err.Detail)
	assert.Contains(t, err.Error(), "unauthenticated")
}
