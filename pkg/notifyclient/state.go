package notifyclient

import (
	"slices"
	"strconv"
	"sync"
	"time"

	notify "github.com/tracepanic/compyle/pkg/notifications"
)

const (
	// CompactLimit is the number of unread notifications the compact view shows.
	CompactLimit = 3
	// PageSize is the page length of the full view.
	PageSize = 10
	// badgeCap is the largest count rendered as a number on the badge.
	badgeCap = 9
)

// Tab selects a partition of the full view.
type Tab string

const (
	TabUnread Tab = "unread"
	TabRead   Tab = "read"
)

// State is the single client-side source of truth. Polling replaces it,
// pushes upsert into it, commands mutate it. Safe for concurrent use.
type State struct {
	mu        sync.RWMutex
	items     map[string]notify.Notification
	listeners []func()
}

func NewState() *State {
	return &State{items: make(map[string]notify.Notification)}
}

// OnChange registers fn to run after every change. Listeners run outside the
// lock, on the goroutine that made the change.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Replace makes list the whole state.
func (s *State) Replace(list []notify.Notification) {
	s.update(func(items map[string]notify.Notification) bool {
		clear(items)
		for _, n := range list {
			items[n.ID] = n
		}
		return true
	})
}

// Upsert inserts n or overwrites the entry with the same id.
func (s *State) Upsert(n notify.Notification) {
	s.update(func(items map[string]notify.Notification) bool {
		items[n.ID] = n
		return true
	})
}

// Apply runs fn on the entry with id. It reports whether the entry exists.
func (s *State) Apply(id string, fn func(*notify.Notification)) bool {
	var found bool
	s.update(func(items map[string]notify.Notification) bool {
		n, ok := items[id]
		if !ok {
			return false
		}
		found = true
		fn(&n)
		items[id] = n
		return true
	})
	return found
}

// ApplyAll runs fn on every entry.
func (s *State) ApplyAll(fn func(*notify.Notification)) {
	s.update(func(items map[string]notify.Notification) bool {
		for id, n := range items {
			fn(&n)
			items[id] = n
		}
		return len(items) > 0
	})
}

// Remove drops the entry with id. It reports whether the entry existed.
func (s *State) Remove(id string) bool {
	var found bool
	s.update(func(items map[string]notify.Notification) bool {
		_, found = items[id]
		delete(items, id)
		return found
	})
	return found
}

// Get returns the entry with id.
func (s *State) Get(id string) (notify.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.items[id]
	return n, ok
}

// Len returns the number of entries.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns every entry, newest first.
func (s *State) All() []notify.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sorted(s.items, nil)
}

func (s *State) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// CompactView backs a header dropdown.
type CompactView struct {
	Items   []notify.Notification
	Unread  int
	HasMore bool
}

// Badge renders the unread count, capped at "9+". Zero renders empty.
func (v CompactView) Badge() string {
	switch {
	case v.Unread == 0:
		return ""
	case v.Unread > badgeCap:
		return strconv.Itoa(badgeCap) + "+"
	}
	return strconv.Itoa(v.Unread)
}

// Compact returns the newest unread notifications, at most CompactLimit.
func (s *State) Compact() CompactView {
	s.mu.RLock()
	unread := sorted(s.items, func(n notify.Notification) bool { return !n.Read })
	s.mu.RUnlock()

	v := CompactView{Unread: len(unread), HasMore: len(unread) > CompactLimit}
	v.Items = unread[:min(len(unread), CompactLimit)]
	return v
}

// FullView is one page of one tab.
type FullView struct {
	Tab         Tab
	Items       []notify.Notification
	Page        int
	Pages       int
	UnreadTotal int
	ReadTotal   int
}

// Full returns page (1-based) of tab. Out of range pages are clamped.
func (s *State) Full(tab Tab, page int) FullView {
	s.mu.RLock()
	all := sorted(s.items, nil)
	s.mu.RUnlock()

	var unread, read []notify.Notification
	for _, n := range all {
		if n.Read {
			read = append(read, n)
		} else {
			unread = append(unread, n)
		}
	}

	items := unread
	if tab == TabRead {
		items = read
	} else {
		tab = TabUnread
	}

	pages := max(1, (len(items)+PageSize-1)/PageSize)
	page = min(max(page, 1), pages)
	start := (page - 1) * PageSize
	end := min(start+PageSize, len(items))

	return FullView{
		Tab:         tab,
		Items:       items[start:end],
		Page:        page,
		Pages:       pages,
		UnreadTotal: len(unread),
		ReadTotal:   len(read),
	}
}

func (s *State) snapshot() map[string]notify.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]notify.Notification, len(s.items))
	for id, n := range s.items {
		snap[id] = n
	}
	return snap
}

func (s *State) restore(snap map[string]notify.Notification) {
	s.update(func(items map[string]notify.Notification) bool {
		clear(items)
		for id, n := range snap {
			items[id] = n
		}
		return true
	})
}

func (s *State) update(fn func(map[string]notify.Notification) bool) {
	s.mu.Lock()
	changed := fn(s.items)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l()
		}
	}
}

// sorted returns entries matching keep (all when nil), newest first with id
// as tie-breaker, matching the server order.
func sorted(items map[string]notify.Notification, keep func(notify.Notification) bool) []notify.Notification {
	out := make([]notify.Notification, 0, len(items))
	for _, n := range items {
		if keep == nil || keep(n) {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b notify.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out
}

// touch marks n as changed now.
func touch(n *notify.Notification) {
	n.UpdatedAt = time.Now()
}
