package favorites

import (
	"log/slog"
	"sync"
)

// Collection is an in-memory view holding creature records. SetFavorited
// overwrites the favorite flag on every record with the given id and
// returns how many records it touched.
type Collection interface {
	SetFavorited(id int, favorited bool) int
}

// Coordinator applies favorite toggles to the store and pushes the new
// state into every registered collection, so views showing the same
// creature never disagree. Safe for concurrent use.
type Coordinator struct {
	store *Store

	mu    sync.Mutex
	next  int
	views []registration
}

type registration struct {
	key int
	c   Collection
}

// NewCoordinator returns a Coordinator over store.
func NewCoordinator(store *Store) *Coordinator {
	return &Coordinator{store: store}
}

// Store returns the underlying favorites store.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Register attaches a collection. The returned func detaches it and is
// safe to call more than once.
func (c *Coordinator) Register(col Collection) (unregister func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	key := c.next
	c.views = append(c.views, registration{key: key, c: col})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, r := range c.views {
				if r.key == key {
					c.views = append(c.views[:i], c.views[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of registered collections.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

// Toggle flips id in the store and propagates the new state to every
// registered collection. On a store error no collection is touched.
func (c *Coordinator) Toggle(id int) (bool, error) {
	now, err := c.store.Toggle(id)
	if err != nil {
		return false, err
	}
	c.apply(id, now)
	return now, nil
}

// Set stores an explicit favorite state for id and propagates it.
func (c *Coordinator) Set(id int, favorited bool) error {
	var err error
	if favorited {
		err = c.store.Add(id)
	} else {
		err = c.store.Remove(id)
	}
	if err != nil {
		return err
	}
	c.apply(id, favorited)
	return nil
}

func (c *Coordinator) apply(id int, favorited bool) {
	c.mu.Lock()
	views := make([]Collection, len(c.views))
	for i, r := range c.views {
		views[i] = r.c
	}
	c.mu.Unlock()

	var touched int
	for _, v := range views {
		touched += v.SetFavorited(id, favorited)
	}
	slog.Debug("favorite applied", "id", id, "favorited", favorited, "views", len(views), "records", touched)
}
