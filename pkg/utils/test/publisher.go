package testutils

import (
	"context"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
)

// MockPublisher records every mutation event it receives so tests can
// assert on what a handler emitted. Set FailWith to force publish errors.
type MockPublisher struct {
	Events   []*eventstream.MutationEvent
	FailWith error
	Closed   bool
}

var _ eventstream.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishMutation(_ context.Context, event *eventstream.MutationEvent) error {
	if event == nil {
		return eventstream.ErrNilMutationEvent
	}
	if p.FailWith != nil {
		return p.FailWith
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *MockPublisher) Close() error {
	p.Closed = true
	return nil
}
