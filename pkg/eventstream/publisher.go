package eventstream

import "context"

// Publisher publishes memory mutation events to an event stream backend.
type Publisher interface {
	PublishMutation(ctx context.Context, event *MutationEvent) error
	Close() error
}
