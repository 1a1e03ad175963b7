package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("toggle: %w", NotFound("habit"))

	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Equal(t, "not_found", CodeOf(err))
	assert.Equal(t, "toggle: habit not found", err.Error())
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "internal", CodeOf(err))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("duplicate")
	err := Conflict("busy", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}
