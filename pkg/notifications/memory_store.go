package notifications

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps notifications in process memory. It is used in tests and
// for local development with STORE_DRIVER=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Notification
	users map[string]struct{}
	now   func() time.Time
	last  time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithUsers registers known users. Inserting for anyone else fails with
// ErrUnknownUser, mirroring the foreign key of the relational schema. With
// no registered users any user id is accepted.
func WithUsers(ids ...string) MemoryOption {
	return func(s *MemoryStore) {
		for _, id := range ids {
			s.users[id] = struct{}{}
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]Notification),
		users: make(map[string]struct{}),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers a user for ListUserIDs.
func (s *MemoryStore) AddUser(id string) {
	s.mu.Lock()
	s.users[id] = struct{}{}
	s.mu.Unlock()
}

// RemoveUser drops a user and, like ON DELETE CASCADE, every notification
// they own.
func (s *MemoryStore) RemoveUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for nid, n := range s.items {
		if n.UserID == id {
			delete(s.items, nid)
		}
	}
}

func (s *MemoryStore) ListUserIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Notification, error) {
	s.mu.RLock()
	out := make([]Notification, 0)
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if len(out) > ListLimit {
		out = out[:ListLimit]
	}
	return out, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, userID, id string) error {
	s.setRead(userID, id, true)
	return nil
}

func (s *MemoryStore) MarkUnread(_ context.Context, userID, id string) error {
	s.setRead(userID, id, false)
	return nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	for id, n := range s.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.UpdatedAt = now
			s.items[id] = n
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[id]; ok && n.UserID == userID {
		delete(s.items, id)
	}
	return nil
}

func (s *MemoryStore) Insert(ctx context.Context, in NewNotification) (Notification, error) {
	out, err := s.InsertBulk(ctx, []NewNotification{in})
	if err != nil {
		return Notification{}, err
	}
	return out[0], nil
}

func (s *MemoryStore) InsertBulk(_ context.Context, ins []NewNotification) ([]Notification, error) {
	if len(ins) == 0 {
		return []Notification{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		for _, in := range ins {
			if _, ok := s.users[in.UserID]; !ok {
				return nil, storageError(msgInsert, ErrUnknownUser)
			}
		}
	}

	out := make([]Notification, 0, len(ins))
	for _, in := range ins {
		now := s.tick()
		n := Notification{
			ID:        newID(),
			UserID:    in.UserID,
			Title:     in.Title,
			Message:   in.Message,
			Type:      in.Type.OrDefault(),
			Link:      in.Link,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.items[n.ID] = n
		out = append(out, n)
	}
	return out, nil
}

func (s *MemoryStore) setRead(userID, id string, read bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return
	}
	n.Read = read
	n.UpdatedAt = s.tick()
	s.items[id] = n
}

// tick returns a strictly increasing timestamp so insertion order is
// preserved even on coarse clocks. Callers hold s.mu.
func (s *MemoryStore) tick() time.Time {
	now := s.now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}
