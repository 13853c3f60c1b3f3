package collector

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"emailstats/internal/gmail"
	"emailstats/internal/stats"
	"emailstats/internal/window"
)

// fakeMailbox serves pages keyed by page token and headers keyed by id.
type fakeMailbox struct {
	mu        sync.Mutex
	pages     map[string]gmail.ListPage
	headers   map[gmail.MessageID][]gmail.Header
	listErr   error
	getErr    map[gmail.MessageID]error
	getDelay  time.Duration
	listCalls []string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		pages:   map[string]gmail.ListPage{},
		headers: map[gmail.MessageID][]gmail.Header{},
		getErr:  map[gmail.MessageID]error{},
	}
}

func (f *fakeMailbox) add(id gmail.MessageID, headers ...gmail.Header) {
	f.headers[id] = headers
}

func (f *fakeMailbox) List(ctx context.Context, q gmail.Query, pageToken string, pageSize int) (gmail.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, pageToken)
	if f.listErr != nil {
		return gmail.ListPage{}, f.listErr
	}
	return f.pages[pageToken], nil
}

func (f *fakeMailbox) GetHeaders(ctx context.Context, id gmail.MessageID) ([]gmail.Header, error) {
	if f.getDelay > 0 {
		select {
		case <-time.After(f.getDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	return f.headers[id], nil
}

type fakeRepository struct {
	mu      sync.Mutex
	records []stats.Record
	putErrs []error
	puts    int
}

func (r *fakeRepository) Put(ctx context.Context, rec stats.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	if len(r.putErrs) > 0 {
		err := r.putErrs[0]
		r.putErrs = r.putErrs[1:]
		if err != nil {
			return err
		}
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRepository) Query(ctx context.Context, w window.Window) ([]stats.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stats.Record
	for _, rec := range r.records {
		if rec.Day == w.Day && w.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type failingLocker struct{}

func (failingLocker) TryLock(ctx context.Context) (ReleaseFunc, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func from(v string) gmail.Header { return gmail.Header{Name: gmail.HeaderFrom, Value: v} }
func to(v string) gmail.Header   { return gmail.Header{Name: gmail.HeaderTo, Value: v} }
