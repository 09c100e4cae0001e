package service

import (
	"errors"
	"time"

	"study_mentor_backend/internal/config"
	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/internal/util"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	Users *repository.UserRepository
	JWT   config.JWTConfig
}

func NewAuthService(users *repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{Users: users, JWT: jwtCfg}
}

// AuthResult bundles the signed token with the user it belongs to.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Register(email, password, fullName string) (*AuthResult, error) {
	if _, err := s.Users.FindByEmail(email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
	}
	if err := s.Users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	logger.Log.Info("user registered", zap.String("userId", user.ID), zap.String("email", email))
	return s.issueToken(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	user.LastLogin = time.Now()
	if err := s.Users.Update(user); err != nil {
		logger.Log.Warn("last login update failed", zap.String("userId", user.ID), zap.Error(err))
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.JWT.Secret, s.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
