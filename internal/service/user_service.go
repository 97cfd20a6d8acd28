package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/auth"
	"github.com/ahmetcancakir06/nodelab-case/internal/config"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

var (
	// ErrEmailTaken 邮箱已被注册
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserService 用户注册/登录与在线状态查询
type UserService struct {
	users    user.Repository
	presence Presence
	jwtCfg   *config.JWTConfig
	log      *zap.SugaredLogger
}

// NewUserService 创建用户服务
func NewUserService(users user.Repository, presence Presence, jwtCfg *config.JWTConfig, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, presence: presence, jwtCfg: jwtCfg, log: log}
}

// Register 注册新用户，邮箱唯一
func (s *UserService) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	if existing, _ := s.users.GetByEmail(ctx, email); existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Infow("user registered", "username", username)
	return u, nil
}

// Login 校验密码并签发 token
func (s *UserService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.log.Errorw("user not found", "username", username)
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.Password, password) {
		s.log.Errorw("invalid password", "username", username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.jwtCfg, u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	s.log.Infow("user logged in", "username", username)
	return token, u, nil
}

// UserWithStatus 带在线标记的用户视图
type UserWithStatus struct {
	*user.User
	IsOnline bool `json:"isOnline"`
}

// ListWithPresence 返回全部活跃用户及其在线状态。
// 在线集合不可用时降级为全部离线，不报错
func (s *UserService) ListWithPresence(ctx context.Context) ([]*UserWithStatus, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	online := make(map[int64]bool)
	ids, err := s.presence.Members(ctx)
	if err != nil {
		s.log.Errorw("failed to read online users", "error", err)
	} else {
		for _, id := range ids {
			online[id] = true
		}
	}

	out := make([]*UserWithStatus, 0, len(users))
	for _, u := range users {
		out = append(out, &UserWithStatus{User: u, IsOnline: online[u.ID]})
	}
	return out, nil
}
