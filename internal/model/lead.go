package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rzcleanseal/leads-api/internal/validation"
)

// LeadKind names the collection leads are stored in.
const LeadKind = "lead"

// DefaultLeadLimit bounds a lead listing when no limit is given.
const DefaultLeadLimit int64 = 50

var validate = validator.New()

// requiredLeadFields are the keys a lead body must carry, in report order.
var requiredLeadFields = []string{"email", "tipo"}

// Lead is a captured contact/interest submission.
//
// Email and Tipo are the only typed fields. Everything else in the body
// is kept in Extra and stored verbatim.
type Lead struct {
	Email string         `json:"email"`
	Tipo  string         `json:"tipo"`
	Extra map[string]any `json:"-"`

	// present and fieldErrs are filled while decoding.
	present   map[string]bool
	fieldErrs map[string]string
}

// NewLead returns an empty lead ready to be decoded into.
func NewLead() *Lead {
	return &Lead{}
}

// UnmarshalJSON decodes an arbitrary JSON object into the lead.
// Wrong types and unrepresentable numbers are not decode errors; they
// are reported by Validate as field errors.
func (l *Lead) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("request body must be a JSON object")
	}

	*l = Lead{
		Extra:     make(map[string]any, len(raw)),
		present:   make(map[string]bool, len(raw)),
		fieldErrs: make(map[string]string),
	}

	for k, v := range raw {
		l.present[k] = true
		switch k {
		case "email":
			l.Email = l.stringField(k, v)
		case "tipo":
			l.Tipo = l.stringField(k, v)
		case IDField:
			// identifiers are assigned by the store
		default:
			l.Extra[k] = l.normalizeNumbers(k, v)
		}
	}

	return nil
}

func (l *Lead) stringField(name string, v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	l.fieldErrs[name] = fmt.Sprintf("must be a string, got %s", jsonTypeName(v))
	return ""
}

// Validate implements validation.Validatable. Every offending field is
// reported, sorted by name after the required ones. Empty strings are
// accepted; only presence and type are checked.
func (l *Lead) Validate() error {
	var verrs validation.CustomValidationErrors

	for _, name := range requiredLeadFields {
		if msg, ok := l.fieldErrs[name]; ok {
			verrs = append(verrs, validation.CustomValidationError{Field: name, Message: msg})
		} else if !l.present[name] {
			verrs = append(verrs, validation.CustomValidationError{Field: name, Message: "is required"})
		}
	}

	var other []string
	for name := range l.fieldErrs {
		if !slices.Contains(requiredLeadFields, name) {
			other = append(other, name)
		}
	}
	sort.Strings(other)
	for _, name := range other {
		verrs = append(verrs, validation.CustomValidationError{Field: name, Message: l.fieldErrs[name]})
	}

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// Record returns the document to persist: passthrough fields plus the
// typed ones.
func (l *Lead) Record() Record {
	r := make(Record, len(l.Extra)+2)
	for k, v := range l.Extra {
		r[k] = v
	}
	r["email"] = l.Email
	r["tipo"] = l.Tipo
	return r
}

// LeadQuery holds the optional parameters of a lead listing.
// Empty Email or Tipo do not constrain the result.
type LeadQuery struct {
	Email string `query:"email"`
	Tipo  string `query:"tipo"`
	Limit int64  `query:"limit" validate:"min=0"`
}

// NewLeadQuery returns a query carrying the default limit; binding
// only overwrites the parameters that are present.
func NewLeadQuery() *LeadQuery {
	return &LeadQuery{Limit: DefaultLeadLimit}
}

// Validate implements validation.Validatable.
func (q *LeadQuery) Validate() error {
	return validate.Struct(q)
}

// Filter maps the query to a normalized equality filter.
func (q LeadQuery) Filter() Filter {
	return NewFilter(map[string]string{
		"email": q.Email,
		"tipo":  q.Tipo,
	})
}

// normalizeNumbers turns decoded json.Number values into int64 or
// float64 so stores keep them numeric. A number neither can hold
// exactly is recorded as a field error under path.
func (l *Lead) normalizeNumbers(path string, v any) any {
	switch val := v.(type) {
	case json.Number:
		n, err := parseNumber(val)
		if err != nil {
			l.fieldErrs[path] = err.Error()
		}
		return n
	case map[string]any:
		for k, inner := range val {
			val[k] = l.normalizeNumbers(path+"."+k, inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = l.normalizeNumbers(fmt.Sprintf("%s[%d]", path, i), inner)
		}
		return val
	default:
		return v
	}
}

func parseNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer out of range, got %s", s)
		}
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number out of range, got %s", s)
	}
	return f, nil
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
