package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"attendly/backend/internal/dto"
	"attendly/backend/internal/model"
)

func setupTestUserService() (UserService, *mockRepos) {
	repo, m := newMockRepos()
	svc := NewUserService(repo, zap.NewNop())
	return svc, m
}

func TestUserService_Create(t *testing.T) {
	svc, m := setupTestUserService()

	resp, err := svc.Create(context.Background(), adminActor, &dto.CreateUserRequest{
		Email: "lisi@example.com", Name: "李四", Password: "password123",
		Role: model.RoleStudent, Department: strPtr("Software"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ID == "" || resp.Name != "李四" || resp.Role != model.RoleStudent {
		t.Errorf("用户响应不符: %+v", resp)
	}

	stored := m.user.users[resp.ID]
	if stored == nil {
		t.Fatal("用户未落库")
	}
	if stored.PasswordHash == "password123" || stored.PasswordHash == "" {
		t.Error("密码应以 bcrypt 哈希存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("哈希应可验证原密码: %v", err)
	}

	if len(m.audit.logs) != 1 || m.audit.logs[0].TargetType != model.AuditTargetUser || m.audit.logs[0].Action != model.AuditActionCreate {
		t.Errorf("期望 1 条 CREATE 审计，实际: %+v", m.audit.logs)
	}
}

func TestUserService_Create_Invalid(t *testing.T) {
	svc, m := setupTestUserService()
	m.user.users["u-1"] = &model.User{ID: "u-1", Email: "taken@example.com", Name: "占位", Role: model.RoleStudent}

	if _, err := svc.Create(context.Background(), adminActor, &dto.CreateUserRequest{
		Email: "x@example.com", Name: "x", Password: "password123", Role: "SUPERUSER",
	}); !errors.Is(err, ErrInvalidRoleValue) {
		t.Errorf("期望 ErrInvalidRoleValue，实际: %v", err)
	}

	if _, err := svc.Create(context.Background(), adminActor, &dto.CreateUserRequest{
		Email: "taken@example.com", Name: "x", Password: "password123", Role: model.RoleStudent,
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	svc, m := setupTestUserService()
	m.user.users["u-1"] = &model.User{ID: "u-1", Email: "a@example.com", Name: "甲", Role: model.RoleStudent}
	m.user.users["u-2"] = &model.User{ID: "u-2", Email: "b@example.com", Name: "乙", Role: model.RoleStudent}

	resp, err := svc.Update(context.Background(), adminActor, "u-1", &dto.UpdateUserRequest{
		Name:       strPtr("甲改"),
		Department: strPtr("Math"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Name != "甲改" || resp.Department == nil || *resp.Department != "Math" {
		t.Errorf("更新结果不符: %+v", resp)
	}
	// 邮箱未动
	if resp.Email != "a@example.com" {
		t.Errorf("期望 Email 不变，实际=%s", resp.Email)
	}

	// 换成他人占用的邮箱
	if _, err := svc.Update(context.Background(), adminActor, "u-1", &dto.UpdateUserRequest{
		Email: strPtr("b@example.com"),
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}

	// 保持本人邮箱不报冲突
	if _, err := svc.Update(context.Background(), adminActor, "u-1", &dto.UpdateUserRequest{
		Email: strPtr("a@example.com"),
	}); err != nil {
		t.Errorf("本人邮箱原值应通过: %v", err)
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	svc, m := setupTestUserService()
	m.user.users["u-1"] = &model.User{ID: "u-1", Email: "a@example.com", Name: "甲", Role: model.RoleStudent}

	if _, err := svc.UpdateRole(context.Background(), adminActor, "u-1", &dto.UpdateRoleRequest{
		Role: "GODMODE",
	}); !errors.Is(err, ErrInvalidRoleValue) {
		t.Errorf("期望 ErrInvalidRoleValue，实际: %v", err)
	}

	resp, err := svc.UpdateRole(context.Background(), adminActor, "u-1", &dto.UpdateRoleRequest{
		Role: model.RoleInstructor,
	})
	if err != nil {
		t.Fatalf("UpdateRole 应成功: %v", err)
	}
	if resp.Role != model.RoleInstructor || m.user.users["u-1"].Role != model.RoleInstructor {
		t.Errorf("角色未生效: %+v", resp)
	}
	if len(m.audit.logs) != 1 || m.audit.logs[0].Action != model.AuditActionUpdate {
		t.Errorf("期望 1 条 UPDATE 审计，实际: %+v", m.audit.logs)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, m := setupTestUserService()
	m.user.users["admin-001"] = &model.User{ID: "admin-001", Email: "admin@example.com", Name: "管理员", Role: model.RoleAdmin}
	m.user.users["u-1"] = &model.User{ID: "u-1", Email: "a@example.com", Name: "甲", Role: model.RoleStudent}

	if err := svc.Delete(context.Background(), adminActor, "admin-001"); !errors.Is(err, ErrSelfDelete) {
		t.Errorf("期望 ErrSelfDelete，实际: %v", err)
	}

	if err := svc.Delete(context.Background(), adminActor, "u-404"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}

	if err := svc.Delete(context.Background(), adminActor, "u-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := m.user.users["u-1"]; ok {
		t.Error("用户应已删除")
	}
	if len(m.audit.logs) != 1 || m.audit.logs[0].Action != model.AuditActionDelete {
		t.Errorf("期望 1 条 DELETE 审计，实际: %+v", m.audit.logs)
	}
}

func TestUserService_List(t *testing.T) {
	svc, m := setupTestUserService()
	m.user.users["u-1"] = &model.User{ID: "u-1", Email: "a@example.com", Name: "甲", Role: model.RoleStudent, Department: strPtr("Software")}
	m.user.users["u-2"] = &model.User{ID: "u-2", Email: "b@example.com", Name: "乙", Role: model.RoleInstructor, Department: strPtr("Software")}
	m.user.users["u-3"] = &model.User{ID: "u-3", Email: "c@example.com", Name: "丙", Role: model.RoleStudent, Department: strPtr("Math")}

	out, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(out) != 2 {
		t.Errorf("期望 2 名学生，实际 total=%d len=%d", total, len(out))
	}

	out, total, err = svc.List(context.Background(), &dto.UserListRequest{Department: "Math"})
	if err != nil || total != 1 || out[0].ID != "u-3" {
		t.Errorf("期望按院系过滤出 u-3: total=%d %+v %v", total, out, err)
	}
}
