package user

import (
	"context"
	"time"
)

// User 用户模型。在线状态不落库，由 Redis 在线集合派生
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // 已加密密码
	Deleted   bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	ListActive(ctx context.Context) ([]*User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*User, error)
}
