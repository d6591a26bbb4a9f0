package advect

import (
	"sync"

	"github.com/braid-sim/advdiff/advect/grid"
)

// Checkpoint is a solution saved at one level together with its time.
// It is reference counted: the store holds one reference while the
// checkpoint is current, and every Acquire adds one that the caller must
// drop with Release. The grid function is freed when the last reference goes.
type Checkpoint struct {
	Level int
	T     float64
	U     *grid.GridFunction

	refs int
}

// LevelStore keeps the latest checkpoint per level. It is the only shared
// mutable state of an App and is safe for concurrent use.
type LevelStore struct {
	mu    sync.Mutex
	slots map[int]*Checkpoint
}

func NewLevelStore() *LevelStore {
	return &LevelStore{slots: make(map[int]*Checkpoint)}
}

// Save stores a clone of u as the current checkpoint of level, replacing
// the previous one.
func (s *LevelStore) Save(level int, t float64, u *grid.GridFunction) error {
	c, err := u.Clone()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.slots[level]; ok {
		s.release(old)
	}
	s.slots[level] = &Checkpoint{Level: level, T: t, U: c, refs: 1}
	return nil
}

// Acquire returns the current checkpoint of level with an added reference.
func (s *LevelStore) Acquire(level int) (*Checkpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.slots[level]
	if !ok {
		return nil, false
	}
	cp.refs++
	return cp, true
}

// Release drops a reference obtained from Acquire.
func (s *LevelStore) Release(cp *Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(cp)
}

func (s *LevelStore) release(cp *Checkpoint) {
	if cp.refs == 0 {
		return
	}
	cp.refs--
	if cp.refs == 0 {
		cp.U.Free()
	}
}

// Clear drops the store's reference to every checkpoint.
func (s *LevelStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for level, cp := range s.slots {
		s.release(cp)
		delete(s.slots, level)
	}
}

// Levels returns the number of levels holding a checkpoint.
func (s *LevelStore) Levels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
