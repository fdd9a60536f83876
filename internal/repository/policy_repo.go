package repository

import (
	"context"

	"gorm.io/gorm"

	"attendly/backend/internal/model"
)

// PolicyRepository 考勤政策数据访问接口
type PolicyRepository interface {
	GetByCourse(ctx context.Context, courseID string) (*model.AttendancePolicy, error)
	Save(ctx context.Context, policy *model.AttendancePolicy) error
}

// policyRepo PolicyRepository 的 GORM 实现
type policyRepo struct {
	db *gorm.DB
}

// NewPolicyRepo 创建 PolicyRepository 实例
func NewPolicyRepo(db *gorm.DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) GetByCourse(ctx context.Context, courseID string) (*model.AttendancePolicy, error) {
	var policy model.AttendancePolicy
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepo) Save(ctx context.Context, policy *model.AttendancePolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}
