package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("deleted = ?", false).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("username = ? AND deleted = ?", username, false).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ? AND deleted = ?", email, false).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) ListActive(ctx context.Context) ([]*user.User, error) {
	var list []*user.User
	if err := r.db.WithContext(ctx).Where("deleted = ?", false).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []*user.User
	if err := r.db.WithContext(ctx).Where("id IN ? AND deleted = ?", ids, false).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
