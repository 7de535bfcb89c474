package engine

import (
	"sort"
	"sync"

	"github.com/eventlife/eventlife/internal/model"
)

// store is the engine's only mutable state: the current reminder set ordered
// by trigger time, plus the last-known permission flag. Mutations are
// compute-then-swap under a short lock; capability I/O never happens while
// this lock is held. Nothing outside the engine ever sees the backing slice,
// only copies.
type store struct {
	mu         sync.RWMutex
	reminders  []model.Reminder
	permission bool
}

// snapshot returns a copy of the current reminder list.
func (s *store) snapshot() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// count returns the number of tracked reminders.
func (s *store) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// replace swaps in a new reminder set, sorted by trigger time ascending.
func (s *store) replace(list []model.Reminder) {
	sorted := make([]model.Reminder, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScheduledTime.Before(sorted[j].ScheduledTime)
	})

	s.mu.Lock()
	s.reminders = sorted
	s.mu.Unlock()
}

// clear empties the reminder set.
func (s *store) clear() {
	s.mu.Lock()
	s.reminders = nil
	s.mu.Unlock()
}

// update applies fn to the reminder with the given ID via copy-on-write.
// Returns false when the ID is unknown, leaving the set untouched.
func (s *store) update(id string, fn func(*model.Reminder)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			next := make([]model.Reminder, len(s.reminders))
			copy(next, s.reminders)
			fn(&next[i])
			s.reminders = next
			return true
		}
	}
	return false
}

// remove deletes the reminder with the given ID via copy-on-write.
// Returns false when the ID is unknown.
func (s *store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			next := make([]model.Reminder, 0, len(s.reminders)-1)
			next = append(next, s.reminders[:i]...)
			next = append(next, s.reminders[i+1:]...)
			s.reminders = next
			return true
		}
	}
	return false
}

// setPermission records the flag and reports whether it changed.
func (s *store) setPermission(granted bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission == granted {
		return false
	}
	s.permission = granted
	return true
}

// permissionState returns the last-known permission flag.
func (s *store) permissionState() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}
