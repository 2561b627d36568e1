package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	v := &ValidationError{}
	v.Add("attendeeEmail", "attendeeEmail is required")
	v.Add("attendeeEmail", "ignored")
	v.Add("agenda", "agenda is required")

	wrapped := fmt.Errorf("create booking: %w", v)
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "validation failed: agenda: agenda is required; attendeeEmail: attendeeEmail is required", v.Error())

	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Len(t, target.Fields, 2)
}

func TestValidationError_Empty(t *testing.T) {
	var v *ValidationError
	assert.False(t, v.HasErrors())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
