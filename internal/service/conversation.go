package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/user"
)

// ErrUnknownParticipant 参与者无法解析为已存在的用户
var ErrUnknownParticipant = errors.New("unknown conversation participant")

// ConversationResolver 为一对用户解析稳定的会话标识。
// 优先复用两人之间最近一条消息的会话号，否则用用户名
// 按字典序拼接出方向无关的新会话号
type ConversationResolver struct {
	messages message.Repository
	users    user.Repository
}

// NewConversationResolver 创建会话解析器
func NewConversationResolver(messages message.Repository, users user.Repository) *ConversationResolver {
	return &ConversationResolver{messages: messages, users: users}
}

// Resolve 满足 Resolve(a,b) == Resolve(b,a)
func (r *ConversationResolver) Resolve(ctx context.Context, senderID, receiverID int64) (string, error) {
	last, err := r.messages.LastBetween(ctx, senderID, receiverID)
	if err != nil {
		return "", fmt.Errorf("lookup last message: %w", err)
	}
	if last != nil {
		return last.ConversationID, nil
	}

	sender, err := r.users.GetByID(ctx, senderID)
	if err != nil {
		return "", fmt.Errorf("%w: sender %d: %v", ErrUnknownParticipant, senderID, err)
	}
	receiver, err := r.users.GetByID(ctx, receiverID)
	if err != nil {
		return "", fmt.Errorf("%w: receiver %d: %v", ErrUnknownParticipant, receiverID, err)
	}

	a, b := sender.Username, receiver.Username
	if b < a {
		a, b = b, a
	}
	return a + "_" + b, nil
}
