package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
)

// MessageService 消息历史查询（已读回执的落库端在这里）
type MessageService struct {
	messages message.Repository
	log      *zap.SugaredLogger
}

// NewMessageService 创建消息服务
func NewMessageService(messages message.Repository, log *zap.SugaredLogger) *MessageService {
	return &MessageService{messages: messages, log: log}
}

// Conversation 返回当前用户与对端之间的全部消息（时间升序），
// 并把对端发来的未读消息置为已读
func (s *MessageService) Conversation(ctx context.Context, meID, peerID int64) ([]*message.Message, error) {
	if err := s.messages.MarkRead(ctx, meID, peerID); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}

	list, err := s.messages.ListConversation(ctx, meID, peerID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	s.log.Debugw("messages fetched", "me", meID, "peer", peerID, "count", len(list))
	return list, nil
}
