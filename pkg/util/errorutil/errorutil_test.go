package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchByCode(t *testing.T) {
	err := fmt.Errorf("register: %w", NewDuplicateUsername("alice123"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.NotErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, NewForbidden("no"), ErrForbidden)
	assert.ErrorIs(t, NewNotFound("ticket", nil), ErrNotFound)
	assert.ErrorIs(t, NewInvalidCredentials(), ErrInvalidCredentials)
}

func TestInvalidCredentialsIsUniform(t *testing.T) {
	assert.Equal(t, NewInvalidCredentials().Error(), NewInvalidCredentials().Error())
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))

	notFound := ToDomainError(sql.ErrNoRows)
	assert.Equal(t, CodeNotFound, notFound.Code)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error: boom", internal.Error())

	original := NewValidationError("bad", map[string]any{"field": "x"})
	assert.Same(t, original, ToDomainError(original))
}
