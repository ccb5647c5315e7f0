package service

import (
	"context"
	"quizify_backend/internal/config"
	"quizify_backend/internal/model"
	"quizify_backend/internal/repository"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterReq struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=6"`
	Role     model.UserRole `json:"role" binding:"required,oneof=student teacher"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	Now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterReq) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if _, exists := s.UserRepo.FindByEmail(email); exists {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.GenerateUUID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         req.Role,
		CreatedAt:    s.Now(),
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("User registered", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	user, ok := s.UserRepo.FindByEmail(strings.TrimSpace(email))
	if !ok {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.Profile()}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(claims *util.Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expiry := s.Now().Add(s.Cfg.JWT.ExpireTime)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.revoked[claims.ID] = expiry
	s.mu.Unlock()
}

// IsRevoked reports whether the token id was logged out.
func (s *AuthService) IsRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

// PurgeRevoked forgets revoked token ids whose tokens have expired.
func (s *AuthService) PurgeRevoked() int {
	now := s.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for jti, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n
}

func (s *AuthService) GetUser(id string) (*model.User, error) {
	user, ok := s.UserRepo.FindByID(id)
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}
