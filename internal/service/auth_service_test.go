package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"attendly/backend/config"
	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *mockRepos) {
	repo, m := newMockRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "unit-test-secret-0123456789",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, m
}

func seedLoginUser(m *mockRepos) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	m.user.users["stu-001"] = &model.User{
		ID: "stu-001", Email: "zhangsan@example.com", Name: "张三",
		Role: model.RoleStudent, PasswordHash: string(hash),
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, m := setupTestAuthService()
	seedLoginUser(m)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("应返回双 Token")
	}
	if result.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in 不符: %d", result.ExpiresIn)
	}
	if result.User.ID != "stu-001" || result.User.Role != model.RoleStudent {
		t.Errorf("用户信息不符: %+v", result.User)
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, m := setupTestAuthService()
	seedLoginUser(m)

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "zhangsan@example.com", Password: "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际: %v", err)
	}

	// 用户不存在与密码错误不可区分
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, m := setupTestAuthService()
	seedLoginUser(m)

	ctx := context.Background()
	login, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "zhangsan@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.User.ID != "stu-001" {
		t.Errorf("刷新结果不符: %+v", refreshed)
	}

	// AccessToken 不能当 RefreshToken 用
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.AccessToken}); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: "not-a-token"}); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, m := setupTestAuthService()
	seedLoginUser(m)

	result, err := svc.Me(context.Background(), studentActor)
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if result.Email != "zhangsan@example.com" {
		t.Errorf("期望 Email=zhangsan@example.com，实际=%s", result.Email)
	}

	ghost := Actor{UserID: "user-404", Role: model.RoleStudent}
	if _, err := svc.Me(context.Background(), ghost); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestAuthService_Logout_NoRedis(t *testing.T) {
	svc, m := setupTestAuthService()
	seedLoginUser(m)

	// Redis 缺席时登出降级为空操作
	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 的 Logout 应为空操作: %v", err)
	}
}
