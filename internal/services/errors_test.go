package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapsToKind(t *testing.T) {
	err := newError(ErrNotFound, "Clothing with name %s not found", "Boots")

	assert.Equal(t, "Clothing with name Boots not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)

	wrapped := fmt.Errorf("placing order: %w", err)
	var derr *Error
	assert.True(t, errors.As(wrapped, &derr))
	assert.Same(t, err, derr)
}

func TestAsDomainError(t *testing.T) {
	domain := newError(ErrConflict, "You have already ordered Shirt")
	assert.Same(t, domain, asDomainError(domain))

	err := asDomainError(errors.New("disk full"))
	assert.ErrorIs(t, err, ErrStore)
	assert.Equal(t, "Database error: disk full", err.Error())
}
