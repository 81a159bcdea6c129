package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/stackshelf/pkg/api"
)

type memRow struct {
	seq int
	rec Record
}

type memStore struct {
	mu   sync.RWMutex
	byID map[string]*memRow
	seq  map[string]int
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() Store {
	return &memStore{byID: make(map[string]*memRow), seq: make(map[string]int)}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) Upsert(ctx context.Context, author string, e api.Essay) error {
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("upsert %q: author is required", e.Title)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(author, e)
	return nil
}

func (m *memStore) upsertLocked(author string, e api.Essay) {
	id := e.ID()
	if row, ok := m.byID[id]; ok {
		row.rec.Essay = e
		return
	}
	m.seq[author]++
	m.byID[id] = &memRow{
		seq: m.seq[author],
		rec: Record{Author: author, Essay: e, ScrapedAt: time.Now().UTC()},
	}
}

func (m *memStore) UpsertMany(ctx context.Context, author string, es api.Essays) error {
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("upsert: author is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range es {
		m.upsertLocked(author, e)
	}
	return nil
}

func (m *memStore) List(ctx context.Context, q ListQuery) (api.Essays, error) {
	m.mu.RLock()
	rows := make([]*memRow, 0, len(m.byID))
	for _, r := range m.byID {
		if q.Author == "" || r.rec.Author == q.Author {
			rows = append(rows, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var ka, kb int64
		switch q.Order {
		case OrderDate:
			ka, kb = unixDate(a.rec.Essay), unixDate(b.rec.Essay)
		case OrderLikes:
			ka, kb = int64(a.rec.Essay.LikeCount), int64(b.rec.Essay.LikeCount)
		default:
			if a.rec.Author != b.rec.Author {
				return a.rec.Author < b.rec.Author
			}
			if q.Desc {
				return a.seq > b.seq
			}
			return a.seq < b.seq
		}
		if ka != kb {
			if q.Desc {
				return ka > kb
			}
			return ka < kb
		}
		if a.rec.Author != b.rec.Author {
			return a.rec.Author < b.rec.Author
		}
		return a.seq < b.seq
	})

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	out := make(api.Essays, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.rec.Essay)
	}
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r.rec, nil
}

func (m *memStore) Authors(ctx context.Context) ([]AuthorStat, error) {
	m.mu.RLock()
	counts := map[string]int{}
	for _, r := range m.byID {
		counts[r.rec.Author]++
	}
	m.mu.RUnlock()
	out := make([]AuthorStat, 0, len(counts))
	for name, n := range counts {
		out = append(out, AuthorStat{Name: name, Essays: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) Seen(ctx context.Context, sourceURL string) (bool, error) {
	if sourceURL == "" {
		return false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.byID {
		if r.rec.Essay.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}
