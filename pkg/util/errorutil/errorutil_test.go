package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	unauthorized := ToDomainError(fmt.Errorf("wrap: %w", NewUnauthorized("nope")))
	assert.Equal(t, http.StatusUnauthorized, unauthorized.HTTPStatus)
	assert.Equal(t, "UNAUTHORIZED", unauthorized.Code)

	notFound := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	badRequest := ToDomainError(fiber.NewError(http.StatusBadRequest, "invalid payload"))
	assert.Equal(t, "VALIDATION_FAILED", badRequest.Code)
	assert.Equal(t, "invalid payload", badRequest.Message)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)
}
