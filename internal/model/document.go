// Package model defines the records exchanged between the HTTP layer
// and the document store: the Lead schema, the lead query and the
// equality filter it maps to, and the serialization applied to every
// record leaving the service.
package model

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IDField is the store-assigned identifier key of every document.
const IDField = "_id"

// Record is a schemaless document as stored and returned by the store.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Condition is a single exact-equality match on a top-level field.
type Condition struct {
	Field string
	Value string
}

// Filter is a conjunction of equality conditions, sorted by field.
// The zero value matches every document.
type Filter []Condition

// NewFilter builds a normalized filter from field/value pairs.
// Empty values are dropped; for a repeated field the last value wins.
func NewFilter(pairs map[string]string) Filter {
	f := make(Filter, 0, len(pairs))
	for field, value := range pairs {
		if value == "" {
			continue
		}
		f = append(f, Condition{Field: field, Value: value})
	}
	sort.Slice(f, func(i, j int) bool { return f[i].Field < f[j].Field })
	return f
}

// Map returns the filter as field -> value.
func (f Filter) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, c := range f {
		m[c.Field] = c.Value
	}
	return m
}

// Matches reports whether every condition holds on r. Only string
// values can match.
func (f Filter) Matches(r Record) bool {
	for _, c := range f {
		v, ok := r[c.Field].(string)
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}

// Serialize is the single boundary where store-native values are turned
// into their external form: identifiers become strings, nested
// documents and arrays are walked.
func Serialize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = serializeValue(v)
	}
	return out
}

// SerializeAll applies Serialize to every record.
func SerializeAll(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, Serialize(r))
	}
	return out
}

func serializeValue(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case *bson.ObjectID:
		if val == nil {
			return nil
		}
		return val.Hex()
	case Record:
		return Serialize(val)
	case bson.M:
		return Serialize(Record(val))
	case map[string]any:
		return Serialize(Record(val))
	case bson.D:
		out := make(Record, len(val))
		for _, e := range val {
			out[e.Key] = serializeValue(e.Value)
		}
		return out
	case bson.A:
		return serializeSlice(val)
	case []any:
		return serializeSlice(val)
	default:
		return v
	}
}

func serializeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = serializeValue(v)
	}
	return out
}
