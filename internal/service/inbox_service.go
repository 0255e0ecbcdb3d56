package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
)

// InboxService backs the shopper's notification inbox
type InboxService struct {
	client InboxClient
	logger *zap.Logger
}

// NewInboxService creates an inbox service
func NewInboxService(client InboxClient, logger *zap.Logger) *InboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxService{client: client, logger: logger}
}

// Messages returns the inbox, newest first
func (s *InboxService) Messages(ctx context.Context) ([]domain.Message, error) {
	msgs, err := s.client.MyMessages(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

// Unread counts unread messages
func (s *InboxService) Unread(ctx context.Context) (int, error) {
	msgs, err := s.client.MyMessages(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range msgs {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead marks one message read
func (s *InboxService) MarkRead(ctx context.Context, messageID string) error {
	return s.client.MarkMessageRead(ctx, messageID)
}

// MarkAllRead marks every unread message read and returns how many it marked.
// It stops at the first failure.
func (s *InboxService) MarkAllRead(ctx context.Context) (int, error) {
	msgs, err := s.client.MyMessages(ctx)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, m := range msgs {
		if m.Read {
			continue
		}
		if err := s.client.MarkMessageRead(ctx, m.ID); err != nil {
			s.logger.Warn("Failed to mark message read", zap.String("message_id", m.ID), zap.Error(err))
			return marked, err
		}
		marked++
	}
	return marked, nil
}
