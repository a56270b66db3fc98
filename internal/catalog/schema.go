package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/heartmarshall/learnsync/internal/domain"
)

// FieldKind is the JSON type a payload field must carry.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldBool
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldInt:
		return "integer"
	case FieldBool:
		return "boolean"
	}
	return "unknown"
}

// Field describes one writable attribute of a syncable entity.
type Field struct {
	Name     string // key in change payloads and snapshots
	Column   string // column in the live table
	Kind     FieldKind
	Required bool   // must be present on create
	Nullable bool   // may be set to JSON null
	Rule     string // validator tag applied to non-null values
}

// Kind is the schema of one syncable entity type.
type Kind struct {
	Type   domain.EntityType
	Table  string
	Fields []Field
}

// Values maps column names to decoded, validated values.
type Values map[string]any

// Columns returns the keys of v in a stable order.
func (v Values) Columns() []string {
	cols := make([]string, 0, len(v))
	for c := range v {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func (k Kind) field(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnToField returns the payload name for a table column.
func (k Kind) ColumnToField(column string) string {
	for _, f := range k.Fields {
		if f.Column == column {
			return f.Name
		}
	}
	return column
}

// Decode parses a change payload into column values. On create every
// Required field must be present; on update at least one field must be.
// Unknown keys, wrong JSON types and rule violations are reported together
// as a *domain.ValidationError.
func (k Kind) Decode(validate *validator.Validate, raw json.RawMessage, create bool) (Values, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return nil, domain.NewValidationError("data", err.Error())
	}

	var verr domain.ValidationError
	out := make(Values, len(payload))

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := k.field(name)
		if !ok {
			verr.Add("data."+name, "unknown field for "+k.Type.String())
			continue
		}
		v, msg := f.convert(payload[name])
		if msg != "" {
			verr.Add("data."+name, msg)
			continue
		}
		if v != nil && f.Rule != "" {
			if err := validate.Var(v, f.Rule); err != nil {
				verr.Add("data."+name, ruleMessage(err))
				continue
			}
		}
		out[f.Column] = v
	}

	if create {
		for _, f := range k.Fields {
			if _, ok := payload[f.Name]; f.Required && !ok {
				verr.Add("data."+f.Name, "required")
			}
		}
	} else if len(payload) == 0 {
		verr.Add("data", "at least one field is required")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.New("must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("must contain a single JSON object")
	}
	if payload == nil {
		return map[string]any{}, nil
	}
	return payload, nil
}

// convert checks the JSON type of v and returns the Go value to store.
// A non-empty message describes why v was rejected.
func (f Field) convert(v any) (any, string) {
	if v == nil {
		if f.Nullable {
			return nil, ""
		}
		return nil, "must not be null"
	}
	switch f.Kind {
	case FieldString:
		if s, ok := v.(string); ok {
			return s, ""
		}
	case FieldInt:
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, ""
			}
		}
	case FieldBool:
		if b, ok := v.(bool); ok {
			return b, ""
		}
	}
	return nil, "must be " + f.Kind.String()
}

func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
	return err.Error()
}
