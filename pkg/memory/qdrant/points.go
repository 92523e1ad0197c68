package qdrant

import (
	"fmt"
	"strconv"

	qdrantgo "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

// formatPointID renders a Qdrant point id as a string, matching the form
// parsePointID accepts.
func formatPointID(id *qdrantgo.PointId) string {
	if id == nil {
		return ""
	}
	switch opt := id.GetPointIdOptions().(type) {
	case *qdrantgo.PointId_Uuid:
		return opt.Uuid
	case *qdrantgo.PointId_Num:
		return strconv.FormatUint(opt.Num, 10)
	default:
		return ""
	}
}

// payloadFromEntry builds the point payload: document text plus metadata.
func payloadFromEntry(entry memory.Entry) map[string]*qdrantgo.Value {
	payload := map[string]any{
		documentKey: entry.Content,
	}
	if entry.Metadata != nil {
		payload[metadataKey] = entry.Metadata
	}
	return qdrantgo.NewValueMap(payload)
}

// entryFromPayload reverses payloadFromEntry. Unknown payload shapes
// degrade to an empty entry rather than failing the whole read.
func entryFromPayload(payload map[string]*qdrantgo.Value) memory.Entry {
	entry := memory.Entry{}

	if doc, ok := payload[documentKey]; ok {
		entry.Content = doc.GetStringValue()
	}

	if md, ok := payload[metadataKey]; ok {
		if s := md.GetStructValue(); s != nil {
			entry.Metadata = structToMap(s)
		}
	}

	return entry
}

// structToMap converts a Qdrant struct value into plain Go types.
func structToMap(s *qdrantgo.Struct) map[string]any {
	m := make(map[string]any, len(s.GetFields()))
	for k, v := range s.GetFields() {
		m[k] = valueToAny(v)
	}
	return m
}

func valueToAny(v *qdrantgo.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrantgo.Value_NullValue:
		return nil
	case *qdrantgo.Value_BoolValue:
		return kind.BoolValue
	case *qdrantgo.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrantgo.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrantgo.Value_StringValue:
		return kind.StringValue
	case *qdrantgo.Value_StructValue:
		return structToMap(kind.StructValue)
	case *qdrantgo.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, 0, len(values))
		for _, item := range values {
			list = append(list, valueToAny(item))
		}
		return list
	default:
		return nil
	}
}

// translateError maps gRPC transport failures onto the memory package's
// sentinel errors so callers never see raw status codes.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", memory.ErrConnection, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", memory.ErrConnection, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: authentication failed: %s", memory.ErrConnection, st.Message())
	default:
		return fmt.Errorf("qdrant: %s", st.Message())
	}
}
