package qdrant

import (
	"fmt"

	qdrantgo "github.com/qdrant/go-client/qdrant"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

// metadataFieldKey returns the payload path of a filterable field. Filter
// fields always live under the metadata payload key.
func metadataFieldKey(field string) string {
	return metadataKey + "." + field
}

// queryFilter translates a validated memory.Filter into Qdrant's filter
// proto. Equality and inclusion go into must clauses, negations into
// must_not. Float equality has no match variant in Qdrant and is
// expressed as a closed range.
func queryFilter(f memory.Filter) (*qdrantgo.Filter, error) {
	if len(f) == 0 {
		return nil, nil
	}

	out := &qdrantgo.Filter{}
	for _, c := range f {
		key := metadataFieldKey(c.Field)

		switch c.Op {
		case memory.OpEq:
			cond, err := equalityCondition(key, c)
			if err != nil {
				return nil, err
			}
			out.Must = append(out.Must, cond)

		case memory.OpNeq:
			cond, err := equalityCondition(key, c)
			if err != nil {
				return nil, err
			}
			out.MustNot = append(out.MustNot, cond)

		case memory.OpGt, memory.OpGte, memory.OpLt, memory.OpLte:
			cond, err := orderingCondition(key, c)
			if err != nil {
				return nil, err
			}
			out.Must = append(out.Must, cond)

		case memory.OpAny, memory.OpExcept:
			cond, err := inclusionCondition(key, c)
			if err != nil {
				return nil, err
			}
			out.Must = append(out.Must, cond)

		default:
			return nil, fmt.Errorf("filter field %q: unsupported condition %q", c.Field, c.Op)
		}
	}
	return out, nil
}

func equalityCondition(key string, c memory.FieldCondition) (*qdrantgo.Condition, error) {
	switch v := c.Value.(type) {
	case string:
		return matchCondition(key, &qdrantgo.Match{
			MatchValue: &qdrantgo.Match_Keyword{Keyword: v},
		}), nil
	case int64:
		return matchCondition(key, &qdrantgo.Match{
			MatchValue: &qdrantgo.Match_Integer{Integer: v},
		}), nil
	case bool:
		return matchCondition(key, &qdrantgo.Match{
			MatchValue: &qdrantgo.Match_Boolean{Boolean: v},
		}), nil
	case float64:
		// Qdrant matches have no float variant; a closed range is the
		// equality.
		return rangeCondition(key, &qdrantgo.Range{
			Gte: qdrantgo.PtrOf(v),
			Lte: qdrantgo.PtrOf(v),
		}), nil
	default:
		return nil, fmt.Errorf("filter field %q: cannot match value of type %T", c.Field, c.Value)
	}
}

func orderingCondition(key string, c memory.FieldCondition) (*qdrantgo.Condition, error) {
	var v float64
	switch n := c.Value.(type) {
	case int64:
		v = float64(n)
	case float64:
		v = n
	default:
		return nil, fmt.Errorf("filter field %q: condition %q needs a numeric value, got %T", c.Field, c.Op, c.Value)
	}

	r := &qdrantgo.Range{}
	switch c.Op {
	case memory.OpGt:
		r.Gt = qdrantgo.PtrOf(v)
	case memory.OpGte:
		r.Gte = qdrantgo.PtrOf(v)
	case memory.OpLt:
		r.Lt = qdrantgo.PtrOf(v)
	case memory.OpLte:
		r.Lte = qdrantgo.PtrOf(v)
	}
	return rangeCondition(key, r), nil
}

func inclusionCondition(key string, c memory.FieldCondition) (*qdrantgo.Condition, error) {
	switch v := c.Value.(type) {
	case []string:
		if c.Op == memory.OpExcept {
			return matchCondition(key, &qdrantgo.Match{
				MatchValue: &qdrantgo.Match_ExceptKeywords{
					ExceptKeywords: &qdrantgo.RepeatedStrings{Strings: v},
				},
			}), nil
		}
		return matchCondition(key, &qdrantgo.Match{
			MatchValue: &qdrantgo.Match_Keywords{
				Keywords: &qdrantgo.RepeatedStrings{Strings: v},
			},
		}), nil

	case []int64:
		if c.Op == memory.OpExcept {
			return matchCondition(key, &qdrantgo.Match{
				MatchValue: &qdrantgo.Match_ExceptIntegers{
					ExceptIntegers: &qdrantgo.RepeatedIntegers{Integers: v},
				},
			}), nil
		}
		return matchCondition(key, &qdrantgo.Match{
			MatchValue: &qdrantgo.Match_Integers{
				Integers: &qdrantgo.RepeatedIntegers{Integers: v},
			},
		}), nil

	default:
		return nil, fmt.Errorf("filter field %q: condition %q needs a list value, got %T", c.Field, c.Op, c.Value)
	}
}

func matchCondition(key string, match *qdrantgo.Match) *qdrantgo.Condition {
	return &qdrantgo.Condition{
		ConditionOneOf: &qdrantgo.Condition_Field{
			Field: &qdrantgo.FieldCondition{
				Key:   key,
				Match: match,
			},
		},
	}
}

func rangeCondition(key string, r *qdrantgo.Range) *qdrantgo.Condition {
	return &qdrantgo.Condition{
		ConditionOneOf: &qdrantgo.Condition_Field{
			Field: &qdrantgo.FieldCondition{
				Key:   key,
				Range: r,
			},
		},
	}
}

// indexFieldType maps a filterable field type onto Qdrant's payload index
// schema type.
func indexFieldType(t memory.FieldType) (qdrantgo.FieldType, error) {
	switch t {
	case memory.FieldTypeKeyword:
		return qdrantgo.FieldType_FieldTypeKeyword, nil
	case memory.FieldTypeInteger:
		return qdrantgo.FieldType_FieldTypeInteger, nil
	case memory.FieldTypeFloat:
		return qdrantgo.FieldType_FieldTypeFloat, nil
	case memory.FieldTypeBoolean:
		return qdrantgo.FieldType_FieldTypeBool, nil
	default:
		return 0, fmt.Errorf("unsupported filterable field type %q", t)
	}
}
