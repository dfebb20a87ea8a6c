package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/floroz/hammer/internal/domain/notifications"
)

// NotificationStore is a notifications.Sink that keeps every notice as an inbox entry.
// Redelivered notices with a known EventID are ignored.
type NotificationStore struct {
	mu        sync.RWMutex
	byUser    map[uuid.UUID][]*notifications.Notification
	processed map[uuid.UUID]struct{}
	live      notifications.LivePublisher
}

// NewNotificationStore creates an empty store. live may be nil.
func NewNotificationStore(live notifications.LivePublisher) *NotificationStore {
	return &NotificationStore{
		byUser:    make(map[uuid.UUID][]*notifications.Notification),
		processed: make(map[uuid.UUID]struct{}),
		live:      live,
	}
}

// Enqueue implements notifications.Sink
func (s *NotificationStore) Enqueue(ctx context.Context, n notifications.Notice) error {
	s.mu.Lock()
	if _, dup := s.processed[n.EventID]; dup {
		s.mu.Unlock()
		return nil
	}
	s.processed[n.EventID] = struct{}{}
	notification := n.Notification(time.Now().UTC())
	s.byUser[n.UserID] = append(s.byUser[n.UserID], notification)
	s.mu.Unlock()

	if s.live != nil {
		return s.live.PublishNotification(ctx, notification)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (s *NotificationStore) ListNotifications(_ context.Context, userID uuid.UUID, limit, offset int) ([]*notifications.Notification, error) {
	s.mu.RLock()
	inbox := s.byUser[userID]
	list := make([]*notifications.Notification, 0, len(inbox))
	for i := len(inbox) - 1; i >= 0; i-- {
		c := *inbox[i]
		list = append(list, &c)
	}
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 || offset >= len(list) {
		return []*notifications.Notification{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
