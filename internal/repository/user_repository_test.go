package repository

import (
	"context"
	"quizify_backend/internal/model"
	"quizify_backend/pkg/database"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	kv := database.NewMemoryKV()
	ctx := context.Background()

	repo := NewUserRepository(kv)
	require.NoError(t, repo.Load(ctx))
	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Email: "Ada@Example.com", Role: model.Teacher}))

	again := NewUserRepository(kv)
	require.NoError(t, again.Load(ctx))

	u, ok := again.FindByEmail("ada@example.com")
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	_, ok = again.FindByID("missing")
	assert.False(t, ok)
}
