package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingConflict_CarriesReason(t *testing.T) {
	err := fmt.Errorf("create: %w", NewBookingConflict("Provider has a conflicting appointment"))

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "Provider has a conflicting appointment", ConflictReason(err))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NewNotFound("appointment", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, NewValidation("patient_id is required", nil).StatusCode())
	assert.Equal(t, http.StatusConflict, NewBookingConflict("x").StatusCode())
	assert.Equal(t, http.StatusConflict, NewInvalidTransition("completed", "scheduled").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, NewInternal(nil).StatusCode())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(0), CodeOf(fmt.Errorf("boom")))
	assert.Empty(t, ConflictReason(NewValidation("bad", nil)))
}
