package document

import (
	"context"
	"sort"
	"testing"
	"time"

	domdoc "github.com/kailas-cloud/docsim/internal/domain/document"
)

// memStore is an in-memory implementation of the consumer interface.
type memStore struct {
	counters map[string]int64
	hashes   map[string]map[string]string
	zsets    map[string]map[string]float64

	incrErr  error
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{
		counters: map[string]int64{},
		hashes:   map[string]map[string]string{},
		zsets:    map[string]map[string]float64{},
	}
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.counters[key]++
	return m.counters[key], nil
}

// HSetIndexed applies every write or none, like MULTI/EXEC.
func (m *memStore) HSetIndexed(
	_ context.Context, key string, fields map[string]string,
	score float64, member string, indexes ...string,
) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	for _, idx := range indexes {
		z := m.zsets[idx]
		if z == nil {
			z = map[string]float64{}
			m.zsets[idx] = z
		}
		z[member] = score
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if h, ok := m.hashes[key]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *memStore) ZRange(_ context.Context, key string, _, _ int64, rev bool) ([]string, error) {
	z := m.zsets[key]
	members := make([]string, 0, len(z))
	for k := range z {
		members = append(members, k)
	}
	sort.Slice(members, func(i, j int) bool {
		if rev {
			return z[members[i]] > z[members[j]]
		}
		return z[members[i]] < z[members[j]]
	})
	return members, nil
}

func newDoc(t *testing.T, owner, filename, content string) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(owner, filename, content, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("domdoc.New: %v", err)
	}
	return d
}
