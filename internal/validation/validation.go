// Package validation turns untyped mutation payloads into typed inputs.
// It is the only place that interprets the shape of caller-supplied data;
// it never touches storage or identity.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
)

// Payload is a mutation body before validation, as decoded from JSON.
type Payload map[string]any

type Schema string

const (
	SchemaCreateWorkout Schema = "create_workout"
	SchemaUpdateWorkout Schema = "update_workout"
	SchemaDeleteWorkout Schema = "delete_workout"
)

var ErrUnknownSchema = errors.New("unknown validation schema")

// Issue describes one offending field. Path is dot separated for nested fields.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Failure is returned when a payload does not satisfy its schema.
type Failure struct {
	Issues []Issue
}

func (f *Failure) Error() string {
	parts := make([]string, len(f.Issues))
	for i, is := range f.Issues {
		parts[i] = is.Path + ": " + is.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type CreateWorkout struct {
	Name      string
	StartedAt time.Time
}

type UpdateWorkout struct {
	ID        string
	Name      *string
	StartedAt *time.Time
}

type DeleteWorkout struct {
	ID string
}

const idRules = "uuid"

var nameRules = fmt.Sprintf("min=1,max=%d", domain.MaxWorkoutNameLen)

// localLayouts are accepted in addition to RFC 3339 and read in the configured zone,
// matching what an HTML datetime-local input submits.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

type Validator struct {
	v   *validator.Validate
	loc *time.Location
}

// New returns a Validator. Timestamps without an offset are read in loc.
func New(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled()), loc: loc}
}

// Validate checks payload against schema and returns the typed input
// (CreateWorkout, UpdateWorkout or DeleteWorkout) or a *Failure.
func (v *Validator) Validate(schema Schema, payload Payload) (any, error) {
	switch schema {
	case SchemaCreateWorkout:
		in, f := v.ValidateCreate(payload)
		if f != nil {
			return nil, f
		}
		return in, nil
	case SchemaUpdateWorkout:
		in, f := v.ValidateUpdate(payload)
		if f != nil {
			return nil, f
		}
		return in, nil
	case SchemaDeleteWorkout:
		in, f := v.ValidateDelete(payload)
		if f != nil {
			return nil, f
		}
		return in, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, schema)
	}
}

func (v *Validator) ValidateCreate(p Payload) (CreateWorkout, *Failure) {
	var (
		in     CreateWorkout
		issues []Issue
	)

	if name, issue := v.str(p, "name", true, nameRules); issue != nil {
		issues = append(issues, *issue)
	} else {
		in.Name = *name
	}

	if at, issue := v.timestamp(p, "startedAt", true); issue != nil {
		issues = append(issues, *issue)
	} else {
		in.StartedAt = *at
	}

	if len(issues) > 0 {
		return CreateWorkout{}, &Failure{Issues: issues}
	}
	return in, nil
}

func (v *Validator) ValidateUpdate(p Payload) (UpdateWorkout, *Failure) {
	var (
		in     UpdateWorkout
		issues []Issue
	)

	if id, issue := v.str(p, "id", true, idRules); issue != nil {
		issues = append(issues, *issue)
	} else {
		in.ID = *id
	}

	if name, issue := v.str(p, "name", false, nameRules); issue != nil {
		issues = append(issues, *issue)
	} else {
		in.Name = name
	}

	if at, issue := v.timestamp(p, "startedAt", false); issue != nil {
		issues = append(issues, *issue)
	} else {
		in.StartedAt = at
	}

	if len(issues) > 0 {
		return UpdateWorkout{}, &Failure{Issues: issues}
	}
	return in, nil
}

func (v *Validator) ValidateDelete(p Payload) (DeleteWorkout, *Failure) {
	id, issue := v.str(p, "id", true, idRules)
	if issue != nil {
		return DeleteWorkout{}, &Failure{Issues: []Issue{*issue}}
	}
	return DeleteWorkout{ID: *id}, nil
}

// str extracts a string field and checks it against validator rules.
// A missing optional field yields (nil, nil).
func (v *Validator) str(p Payload, key string, required bool, rules string) (*string, *Issue) {
	raw, ok := p[key]
	if !ok {
		if required {
			return nil, &Issue{Path: key, Message: "Required"}
		}
		return nil, nil
	}

	s, ok := raw.(string)
	if !ok {
		return nil, &Issue{Path: key, Message: "Expected string, received " + typeName(raw)}
	}

	if err := v.v.Var(s, rules); err != nil {
		return nil, &Issue{Path: key, Message: ruleMessage(err)}
	}
	return &s, nil
}

func (v *Validator) timestamp(p Payload, key string, required bool) (*time.Time, *Issue) {
	raw, ok := p[key]
	if !ok {
		if required {
			return nil, &Issue{Path: key, Message: "Required"}
		}
		return nil, nil
	}

	switch val := raw.(type) {
	case time.Time:
		if val.IsZero() {
			return nil, &Issue{Path: key, Message: "Invalid date"}
		}
		return &val, nil
	case string:
		t, err := v.parseTime(val)
		if err != nil {
			return nil, &Issue{Path: key, Message: "Invalid date"}
		}
		return &t, nil
	default:
		return nil, &Issue{Path: key, Message: "Expected date, received " + typeName(raw)}
	}
}

func (v *Validator) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, v.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid value"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "uuid":
		return "Invalid uuid"
	default:
		return "Invalid value"
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
