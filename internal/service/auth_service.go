package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hr-ledger/config"
	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/jwt"
	"hr-ledger/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = pkgerrors.Conflict("username already exists")
	ErrRoleInvalid        = pkgerrors.Validation("role must be admin, guard or viewer")
	ErrPasswordTooShort   = pkgerrors.Validation("password must be at least 8 characters")
)

// AuthService operator authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout revokes the token until it would have expired
	Logout(ctx context.Context, claims *jwt.Claims) error
	CreateUser(ctx context.Context, username, password, fullName, role string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService creates an AuthService. rdb may be nil, logout then only
// succeeds client side.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the user
	user, err := s.repo.User.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// 2. verify the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. issue the token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Username, user.FullName, user.Role)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("blacklist token failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) CreateUser(ctx context.Context, username, password, fullName, role string) (*dto.UserResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, pkgerrors.Validation("username is required")
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	switch role {
	case model.RoleAdmin, model.RoleGuard, model.RoleViewer:
	default:
		return nil, ErrRoleInvalid
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		s.logger.Error("create user failed", zap.String("username", username), zap.Error(err))
		return nil, pkgerrors.Storage("create user failed", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
