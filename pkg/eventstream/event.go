// Package eventstream publishes memory mutation events for downstream
// consumers (audit trails, cache invalidation). Publishing is best-effort:
// failures are logged by callers and never fail the originating tool call.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePointStored is emitted after a new point is stored.
	EventTypePointStored = "memory.point.stored"

	// EventTypePointUpdated is emitted after an existing point is edited.
	EventTypePointUpdated = "memory.point.updated"

	// EventTypePointDeleted is emitted after a point is deleted.
	EventTypePointDeleted = "memory.point.deleted"
)

// MutationEvent is a transport-neutral event payload for a memory mutation.
type MutationEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Collection    string    `json:"collection"`
	PointID       string    `json:"point_id"`
}

// NewMutationEvent builds a v1 event for the given mutation type.
func NewMutationEvent(eventType, collection, pointID string) *MutationEvent {
	return &MutationEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Collection:    collection,
		PointID:       pointID,
	}
}
