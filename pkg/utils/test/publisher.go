package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/figsearch/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.DocumentIngestedEvent

	// Fail causes PublishIngested to return an error.
	Fail bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishIngested(_ context.Context, event *eventstream.DocumentIngestedEvent) error {
	if p.Fail {
		return errors.New("mock publish failure")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns the recorded events.
func (p *MockPublisher) Events() []*eventstream.DocumentIngestedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.DocumentIngestedEvent(nil), p.events...)
}

func (p *MockPublisher) Close() error {
	return nil
}
