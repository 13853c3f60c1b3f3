package stats

import (
	"context"
	"sort"
	"sync"

	"emailstats/internal/broker"
	"emailstats/internal/window"
)

type memoryRepository struct {
	mu       sync.Mutex
	records  map[string]Record
	queryErr error
	putErr   error
	queried  []window.Window
}

func newMemoryRepository(recs ...Record) *memoryRepository {
	r := &memoryRepository{records: map[string]Record{}}
	for _, rec := range recs {
		_ = r.Put(context.Background(), rec)
	}
	return r
}

func key(rec Record) string {
	return rec.Day + "|" + rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (r *memoryRepository) Put(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.records[key(rec)] = rec
	return nil
}

func (r *memoryRepository) Query(ctx context.Context, w window.Window) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queried = append(r.queried, w)
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	var out []Record
	for _, rec := range r.records {
		if rec.Day == w.Day && w.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type recordingProducer struct {
	mu     sync.Mutex
	topics []string
	sent   []broker.Envelope
	err    error
}

func (p *recordingProducer) Publish(ctx context.Context, topic string, msg broker.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }
