package main

import (
	"context"
	"testing"

	authmodels "film_camp/internal/api/auth/models"
	"film_camp/internal/api/base/service/basesvctest"
	"film_camp/internal/common"
	"film_camp/internal/session"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteAdmin(t *testing.T) {
	users := basesvctest.NewMemoryService[authmodels.User]("users")
	users.Seed(authmodels.User{ID: "uid-1", Email: "boss@example.com", Role: session.RoleViewer, CreatedAt: 1})
	ctx := context.Background()

	require.NoError(t, promoteAdmin(ctx, users, "uid-1"))
	u, err := users.FindOneById(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, u.Role)

	// Đã là admin thì không ghi lại
	updates := users.Calls("UpdateOne")
	require.NoError(t, promoteAdmin(ctx, users, "uid-1"))
	assert.Equal(t, updates, users.Calls("UpdateOne"))

	assert.ErrorIs(t, promoteAdmin(ctx, users, "ghost"), common.ErrNotFound)
}

func TestErrorCodeForStatus(t *testing.T) {
	assert.Equal(t, common.ErrCodeValidationInput, errorCodeForStatus(fiber.StatusRequestEntityTooLarge))
	assert.Equal(t, common.ErrCodeAuthToken, errorCodeForStatus(fiber.StatusUnauthorized))
	assert.Equal(t, common.ErrCodeDatabaseQuery, errorCodeForStatus(fiber.StatusMethodNotAllowed))
	assert.Equal(t, common.ErrCodeInternalServer, errorCodeForStatus(fiber.StatusBadGateway))
}
