// Package state keeps the in-memory snapshot of each user's account.
//
// ONE OWNER, PURE REDUCERS:
// Every cached user snapshot belongs to the Store. Callers never get a pointer
// into the cache: reads return deep copies, and writes are expressed as a
// Reducer, a function from the old snapshot to the new one. The Store applies
// the reducer under its lock and swaps the result in whole.
//
// The database stays the source of truth. Services write storage first and
// only then tell the Store, so a crash between the two steps leaves the cache
// stale, never ahead of storage.
package state

import (
	"context"
	"sync"

	"github.com/sakif/insulog/internal/model"
	"golang.org/x/sync/singleflight"
)

// Loader fetches a user from storage on a cache miss.
type Loader func(ctx context.Context, id string) (*model.User, error)

// Reducer derives the next snapshot from the current one. It receives a
// private copy and may modify and return it.
type Reducer func(u *model.User) *model.User

// Store caches user snapshots keyed by user ID.
type Store struct {
	load Loader

	mu    sync.RWMutex
	users map[string]*model.User
	// epoch increases on every write. A load that started before a write
	// may have read the old row, so its result is returned but not cached.
	epoch uint64

	// SINGLEFLIGHT:
	// When ten requests for the same uncached user arrive at once, only the
	// first one queries the database. The other nine wait and share its result.
	group singleflight.Group
}

// New returns an empty Store that fills itself through load.
func New(load Loader) *Store {
	return &Store{
		load:  load,
		users: make(map[string]*model.User),
	}
}

// Get returns a copy of the user's snapshot, loading it on a miss.
func (s *Store) Get(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		return u.Clone(), nil
	}

	// The load runs detached from ctx: it is shared by every caller that
	// joins the flight, and one of them hanging up must not fail the rest.
	// Each caller still stops waiting when its own ctx is done.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (interface{}, error) {
		s.mu.RLock()
		epoch := s.epoch
		s.mu.RUnlock()

		loaded, err := s.load(loadCtx, id)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.epoch == epoch {
			s.users[id] = loaded.Clone()
		}
		s.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// res.Val is shared between every caller that joined this flight, so
		// each gets its own copy.
		return res.Val.(*model.User).Clone(), nil
	}
}

// Put stores a copy of u as the current snapshot.
func (s *Store) Put(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.users[u.ID] = u.Clone()
}

// Update applies reduce to the cached snapshot of id and reports whether one
// was cached. A miss is not an error: the next Get loads the already written
// row from storage.
func (s *Store) Update(id string, reduce Reducer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++

	u, ok := s.users[id]
	if !ok {
		return false
	}
	s.users[id] = reduce(u.Clone())
	return true
}

// Invalidate drops the snapshot of id.
func (s *Store) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	delete(s.users, id)
}

// Len returns the number of cached snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
