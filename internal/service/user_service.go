package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
	"attendly/backend/internal/repository"
)

var (
	ErrEmailTaken       = errors.New("邮箱已被占用")
	ErrSelfDelete       = errors.New("不能删除自己")
	ErrInvalidRoleValue = errors.New("角色取值不合法")
)

// UserService 用户管理业务接口（ADMIN）
type UserService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, actor Actor, id string, req *dto.UpdateRoleRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// userSnapshot 审计快照，不含密码哈希
func userSnapshot(u *model.User) map[string]interface{} {
	return map[string]interface{}{
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"department": u.Department,
	}
}

func (s *userService) Create(ctx context.Context, actor Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, ErrInvalidRoleValue
	}

	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: string(hash),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetUser, user.ID, model.AuditActionCreate, actor.UserID, nil, userSnapshot(user))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	before := userSnapshot(user)

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.User.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetUser, user.ID, model.AuditActionUpdate, actor.UserID, before, userSnapshot(user))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor Actor, id string, req *dto.UpdateRoleRequest) (*dto.UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, ErrInvalidRoleValue
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	before := userSnapshot(user)
	user.Role = req.Role

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("变更角色失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetUser, user.ID, model.AuditActionUpdate, actor.UserID, before, userSnapshot(user))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return ErrSelfDelete
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		s.logger.Error("删除用户失败", zap.String("user_id", id), zap.Error(err))
		return err
	}

	writeAudit(ctx, s.repo.Audit, s.logger,
		model.AuditTargetUser, id, model.AuditActionDelete, actor.UserID, userSnapshot(user), nil)

	return nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, req.Department, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}
