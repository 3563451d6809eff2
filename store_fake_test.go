package skiplock

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"
)

// memTx buffers writes until commit and holds row locks until it finalizes.
type memTx struct {
	writes map[ID]Item
}

// memStore is an in-memory Store with row locks that skip rows held by other transactions.
type memStore struct {
	mu    sync.Mutex
	rows  map[ID]Item
	locks map[ID]*memTx

	claimErr   error
	persistErr error
	oneErr     error
	countErr   error

	commits    int
	rollbacks  int
	countCalls int
}

func newMemStore(items ...Item) *memStore {
	s := &memStore{
		rows:  make(map[ID]Item),
		locks: make(map[ID]*memTx),
	}
	for _, item := range items {
		s.rows[item.ID] = item
	}

	return s
}

func (s *memStore) WithTx(ctx context.Context, fn TxFunc[*memTx]) (err error) {
	tx := &memTx{writes: make(map[ID]Item)}
	committed := false
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for id, holder := range s.locks {
			if holder == tx {
				delete(s.locks, id)
			}
		}
		if !committed {
			s.rollbacks++
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	for id, item := range tx.writes {
		s.rows[id] = item
	}
	s.commits++
	s.mu.Unlock()
	committed = true

	return nil
}

func (s *memStore) ClaimPending(_ context.Context, tx *memTx, limit int) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimErr != nil {
		return nil, s.claimErr
	}

	claimed := make([]Item, 0)
	for _, id := range s.sortedIDs() {
		if limit > 0 && len(claimed) >= limit {
			break
		}
		item := s.rows[id]
		if item.Status != StatusPending {
			continue
		}
		if holder, ok := s.locks[id]; ok && holder != tx {
			continue
		}
		s.locks[id] = tx
		claimed = append(claimed, item)
	}

	return claimed, nil
}

func (s *memStore) PersistBatch(_ context.Context, tx *memTx, items []Item, to Status) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistErr != nil {
		return nil, s.persistErr
	}

	out := make([]Item, 0, len(items))
	var failed []ID
	for _, item := range items {
		current, ok := tx.writes[item.ID]
		if !ok {
			current, ok = s.rows[item.ID]
		}
		if !ok || current.Version != item.Version {
			failed = append(failed, item.ID)

			continue
		}
		next, err := item.Transition(to)
		if err != nil {
			return nil, err
		}
		tx.writes[item.ID] = next
		out = append(out, next)
	}
	if len(failed) > 0 {
		return nil, &ConsistencyError{IDs: failed}
	}

	return out, nil
}

func (s *memStore) PersistOne(_ context.Context, item Item, to Status) (Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.oneErr != nil {
		return item, false, s.oneErr
	}

	current, ok := s.rows[item.ID]
	if !ok || current.Version != item.Version {
		return item, false, nil
	}
	next, err := item.Transition(to)
	if err != nil {
		return item, false, err
	}
	s.rows[item.ID] = next

	return next, true, nil
}

func (s *memStore) InsertBatch(_ context.Context, items []Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.rows[item.ID] = item
	}

	return nil
}

func (s *memStore) CountByStatus(context.Context) (map[Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countCalls++
	if s.countErr != nil {
		return nil, s.countErr
	}
	counts := make(map[Status]int)
	for _, item := range s.rows {
		counts[item.Status]++
	}

	return counts, nil
}

// bump simulates a concurrent writer touching the row outside the lifecycle.
func (s *memStore) bump(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.rows[id]
	item.Version++
	s.rows[id] = item
}

func (s *memStore) get(id ID) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rows[id]
}

func (s *memStore) sortedIDs() []ID {
	ids := make([]ID, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	return ids
}

func pendingItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = NewItem(ID{0x01, byte(i >> 8), byte(i)}, "payload")
	}

	return items
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if entry.msg == msg {
			return entry, true
		}
	}

	return logEntry{}, false
}

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, entry := range l.entries {
		if entry.level == level {
			n++
		}
	}

	return n
}

func (e logEntry) value(key string) (any, bool) {
	for i := 0; i+1 < len(e.args); i += 2 {
		if e.args[i] == key {
			return e.args[i+1], true
		}
	}

	return nil, false
}

type captureMetrics struct {
	mu           sync.Mutex
	claimed      int
	completed    int
	abandoned    int
	passFailures int
	passes       int
	backlog      map[Status]int
	backlogCalls int
}

func (m *captureMetrics) ObservePassDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes++
}

func (m *captureMetrics) AddClaimed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed += count
}

func (m *captureMetrics) AddCompleted(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed += count
}

func (m *captureMetrics) AddAbandoned(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned += count
}

func (m *captureMetrics) AddPassFailures(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passFailures += count
}

func (m *captureMetrics) SetBacklog(status Status, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backlog == nil {
		m.backlog = make(map[Status]int)
	}
	m.backlog[status] = count
	m.backlogCalls++
}

type sequenceClock struct {
	mu    sync.Mutex
	times []time.Time
	index int
}

func (c *sequenceClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.times) == 0 {
		return time.Time{}
	}
	if c.index >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	t := c.times[c.index]
	c.index++

	return t
}
