package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"quizify_backend/internal/model"
	"quizify_backend/pkg/database"
	"quizify_backend/pkg/logger"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const UsersKey = "users"

// UserRepository keeps the auth collaborator's accounts under one KV key, the
// same way QuizStore keeps quizzes.
type UserRepository struct {
	KV database.KVStore

	mu    sync.RWMutex
	users []model.User
}

func NewUserRepository(kv database.KVStore) *UserRepository {
	return &UserRepository{KV: kv}
}

func (r *UserRepository) Load(ctx context.Context) error {
	data, found, err := r.KV.Get(ctx, UsersKey)
	if err != nil {
		return fmt.Errorf("read %s: %w", UsersKey, err)
	}

	var users []model.User
	if found {
		if err := json.Unmarshal(data, &users); err != nil {
			logger.Log.Warn("Discarding unreadable user records", zap.Error(err))
			users = nil
			if delErr := r.KV.Delete(ctx, UsersKey); delErr != nil {
				logger.Log.Error("Failed to remove unreadable user records", zap.Error(delErr))
			}
		}
	}

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]model.User, len(r.users), len(r.users)+1)
	copy(next, r.users)
	next = append(next, *user)

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := r.KV.Set(ctx, UsersKey, data); err != nil {
		return fmt.Errorf("write %s: %w", UsersKey, err)
	}
	r.users = next
	return nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, true
		}
	}
	return nil, false
}

func (r *UserRepository) FindByID(id string) (*model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			out := u
			return &out, true
		}
	}
	return nil, false
}
