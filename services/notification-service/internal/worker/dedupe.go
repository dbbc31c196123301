package worker

import (
	"container/list"
	"sync"
)

// seenSet remembers the most recent event ids, evicting the oldest once
// capacity is reached.
type seenSet struct {
	mu    sync.Mutex
	cap   int
	order *list.List
	index map[string]*list.Element
}

func newSeenSet(capacity int) *seenSet {
	if capacity <= 0 {
		capacity = 1024
	}
	return &seenSet{cap: capacity, order: list.New(), index: make(map[string]*list.Element, capacity)}
}

func (s *seenSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

func (s *seenSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = s.order.PushBack(id)
	if s.order.Len() > s.cap {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(string))
	}
}
