package service

import (
	"context"
	"strconv"

	radix "github.com/mediocregopher/radix/v3"
)

// onlineUsersKey 在线用户集合的 Redis key
const onlineUsersKey = "online_users"

// Presence 在线用户注册表。所有操作原子；调用方把故障当作
// 尽力而为的信号处理，不在集合中不代表一定离线
type Presence interface {
	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) error
	Members(ctx context.Context) ([]int64, error)
	IsMember(ctx context.Context, userID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// PresenceRegistry 基于 Redis 集合的 Presence 实现
type PresenceRegistry struct {
	redis radix.Client
}

// NewPresenceRegistry 创建在线用户注册表
func NewPresenceRegistry(redis radix.Client) *PresenceRegistry {
	return &PresenceRegistry{redis: redis}
}

func (p *PresenceRegistry) Add(ctx context.Context, userID int64) error {
	return p.redis.Do(radix.Cmd(nil, "SADD", onlineUsersKey, strconv.FormatInt(userID, 10)))
}

func (p *PresenceRegistry) Remove(ctx context.Context, userID int64) error {
	return p.redis.Do(radix.Cmd(nil, "SREM", onlineUsersKey, strconv.FormatInt(userID, 10)))
}

func (p *PresenceRegistry) Members(ctx context.Context) ([]int64, error) {
	var raw []string
	if err := p.redis.Do(radix.Cmd(&raw, "SMEMBERS", onlineUsersKey)); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// 集合里混入了非法成员，跳过
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *PresenceRegistry) IsMember(ctx context.Context, userID int64) (bool, error) {
	var n int
	if err := p.redis.Do(radix.Cmd(&n, "SISMEMBER", onlineUsersKey, strconv.FormatInt(userID, 10))); err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *PresenceRegistry) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.redis.Do(radix.Cmd(&n, "SCARD", onlineUsersKey)); err != nil {
		return 0, err
	}
	return n, nil
}
