package memory

import (
	"context"
	"testing"

	"showcase-cms/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &model.User{Email: "Editor@Example.com", DisplayName: "Editor"}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetUserByEmail(ctx, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Editor", byID.DisplayName)

	assert.ErrorIs(t, repo.CreateUser(ctx, &model.User{Email: "EDITOR@example.com"}), model.ErrEmailTaken)

	_, err = repo.GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
