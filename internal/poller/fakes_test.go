package poller_test

import (
	"context"
	"errors"
	"sync"

	"github.com/angeloszaimis/statusboard/internal/metrics"
	"github.com/angeloszaimis/statusboard/internal/statusclient"
)

type fetchFunc func(ctx context.Context, call int) (*statusclient.Response, error)

type fakeFetcher struct {
	mutex sync.Mutex
	calls int
	fn    fetchFunc
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*statusclient.Response, error) {
	f.mutex.Lock()
	f.calls++
	call := f.calls
	fn := f.fn
	f.mutex.Unlock()

	return fn(ctx, call)
}

func (f *fakeFetcher) Calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

func respond(results statusclient.Results) fetchFunc {
	return func(context.Context, int) (*statusclient.Response, error) {
		return &statusclient.Response{Results: results}, nil
	}
}

var errNetwork = errors.New("dial tcp: connection refused")

type recordingSink struct {
	mutex  sync.Mutex
	events []metrics.MetricEvent
}

func (s *recordingSink) Emit(event metrics.MetricEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Count(t metrics.EventType, trigger string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	n := 0
	for _, e := range s.events {
		if e.Type == t && (trigger == "" || e.Trigger == trigger) {
			n++
		}
	}
	return n
}
