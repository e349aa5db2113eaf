package ariarpc

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// pendingStore remembers which method an in-flight id belongs to.
type pendingStore interface {
	Register(id ID, method string) error
	Resolve(id ID) (string, bool)
	Len() int
	Close()
}

// CorrelationTable maps in-flight correlation ids to the method that
// produced them. Entries are never removed: a request that is never
// answered keeps its entry for the lifetime of the table.
type CorrelationTable struct {
	mu      sync.Mutex
	pending map[ID]string
}

// NewCorrelationTable creates an empty, unbounded table.
func NewCorrelationTable() *CorrelationTable {
	return &CorrelationTable{pending: make(map[ID]string)}
}

// Register records that id is awaiting a response for method.
// It fails with ErrDuplicateID and leaves the table unchanged if id is
// already pending.
func (t *CorrelationTable) Register(id ID, method string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; ok {
		return ErrDuplicateID
	}
	t.pending[id] = method
	return nil
}

// Resolve returns the method registered for id. Lookups do not consume
// the entry.
func (t *CorrelationTable) Resolve(id ID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.pending[id]
	return m, ok
}

// Len returns the number of recorded ids.
func (t *CorrelationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *CorrelationTable) Close() {}

// ttlTable is a CorrelationTable whose entries expire a fixed time after
// registration. An expired id resolves as unknown and may be registered
// again.
type ttlTable struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[ID, string]
}

func newTTLTable(ttl time.Duration) *ttlTable {
	c := ttlcache.New[ID, string](
		ttlcache.WithTTL[ID, string](ttl),
		ttlcache.WithDisableTouchOnHit[ID, string](),
	)
	go c.Start()
	return &ttlTable{cache: c}
}

func (t *ttlTable) Register(id ID, method string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cache.Get(id) != nil {
		return ErrDuplicateID
	}
	t.cache.Set(id, method, ttlcache.DefaultTTL)
	return nil
}

func (t *ttlTable) Resolve(id ID) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item := t.cache.Get(id)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Len counts the ids that have not expired, including expired ones the
// cleanup loop has not removed yet.
func (t *ttlTable) Len() int {
	n := 0
	for _, item := range t.cache.Items() {
		if !item.IsExpired() {
			n++
		}
	}
	return n
}

// Close stops the expiration loop.
func (t *ttlTable) Close() {
	t.cache.Stop()
}

var (
	_ pendingStore = (*CorrelationTable)(nil)
	_ pendingStore = (*ttlTable)(nil)
)
