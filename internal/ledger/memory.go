package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-process backend for dev and tests.
type MemoryStore struct {
	mu      sync.Mutex
	seq     int64
	records map[int64]Record
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Record)}
}

func (s *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec.ID = s.seq
	rec.CreatedAt = time.Now().UTC()
	s.records[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) ListDay(ctx context.Context, day, ownerFilter string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, rec := range s.records {
		if rec.Day != day {
			continue
		}
		if ownerFilter != "" && rec.Owner != ownerFilter {
			continue
		}
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Arrival != res[j].Arrival {
			return res[i].Arrival < res[j].Arrival
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Day != res[j].Day {
			return res[i].Day > res[j].Day
		}
		if res[i].Arrival != res[j].Arrival {
			return res[i].Arrival < res[j].Arrival
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) DailyStats(ctx context.Context) ([]DayStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, rec := range s.records {
		counts[rec.Day]++
	}
	stats := make([]DayStat, 0, len(counts))
	for day, count := range counts {
		stats = append(stats, DayStat{Day: day, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Day > stats[j].Day })
	return stats, nil
}
