package validation_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/validation"
	"github.com/google/uuid"
)

func newValidator() *validation.Validator {
	return validation.New(time.UTC)
}

func paths(f *validation.Failure) []string {
	out := make([]string, len(f.Issues))
	for i, is := range f.Issues {
		out[i] = is.Path
	}
	return out
}

// ---- create ----

func TestValidateCreate_Valid(t *testing.T) {
	in, f := newValidator().ValidateCreate(validation.Payload{
		"name":      "Leg Day",
		"startedAt": "2025-03-01T07:15:00.000Z",
	})
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if in.Name != "Leg Day" {
		t.Errorf("Name = %q", in.Name)
	}
	if want := time.Date(2025, time.March, 1, 7, 15, 0, 0, time.UTC); !in.StartedAt.Equal(want) {
		t.Errorf("StartedAt = %v, want %v", in.StartedAt, want)
	}
}

func TestValidateCreate_EmptyNameCitesName(t *testing.T) {
	_, f := newValidator().ValidateCreate(validation.Payload{
		"name":      "",
		"startedAt": "2025-03-01T07:15:00Z",
	})
	if f == nil {
		t.Fatal("expected failure")
	}
	if len(f.Issues) != 1 || f.Issues[0].Path != "name" {
		t.Fatalf("issues = %+v, want one on name", f.Issues)
	}
	if !strings.Contains(f.Issues[0].Message, "at least 1") {
		t.Errorf("message = %q", f.Issues[0].Message)
	}
}

func TestValidateCreate_InvalidStartedAtCitesStartedAt(t *testing.T) {
	for _, bad := range []any{"yesterday", "2025-02-30T10:00:00Z", "", 1712345678, nil, time.Time{}} {
		_, f := newValidator().ValidateCreate(validation.Payload{"name": "Leg Day", "startedAt": bad})
		if f == nil {
			t.Errorf("startedAt=%v: expected failure", bad)
			continue
		}
		if len(f.Issues) != 1 || f.Issues[0].Path != "startedAt" {
			t.Errorf("startedAt=%v: issues = %+v", bad, f.Issues)
		}
	}
}

func TestValidateCreate_NameLengthBounds(t *testing.T) {
	v := newValidator()
	at := "2025-03-01T07:15:00Z"

	if _, f := v.ValidateCreate(validation.Payload{"name": strings.Repeat("a", 255), "startedAt": at}); f != nil {
		t.Errorf("255 chars rejected: %v", f)
	}
	// length counts characters, not bytes
	if _, f := v.ValidateCreate(validation.Payload{"name": strings.Repeat("é", 255), "startedAt": at}); f != nil {
		t.Errorf("255 multibyte chars rejected: %v", f)
	}

	_, f := v.ValidateCreate(validation.Payload{"name": strings.Repeat("a", 256), "startedAt": at})
	if f == nil || f.Issues[0].Path != "name" || !strings.Contains(f.Issues[0].Message, "at most 255") {
		t.Errorf("256 chars: got %+v", f)
	}
}

func TestValidateCreate_MissingFieldsInSchemaOrder(t *testing.T) {
	_, f := newValidator().ValidateCreate(validation.Payload{})
	if f == nil {
		t.Fatal("expected failure")
	}
	got := paths(f)
	if len(got) != 2 || got[0] != "name" || got[1] != "startedAt" {
		t.Fatalf("paths = %v, want [name startedAt]", got)
	}
	for _, is := range f.Issues {
		if is.Message != "Required" {
			t.Errorf("%s: message = %q, want Required", is.Path, is.Message)
		}
	}
}

func TestValidateCreate_WrongType(t *testing.T) {
	_, f := newValidator().ValidateCreate(validation.Payload{"name": 42.0, "startedAt": "2025-03-01T07:15:00Z"})
	if f == nil || f.Issues[0].Message != "Expected string, received number" {
		t.Errorf("got %+v", f)
	}
}

func TestValidateCreate_LocalTimestampUsesZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	in, f := validation.New(loc).ValidateCreate(validation.Payload{"name": "Run", "startedAt": "2025-03-01T06:30"})
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if want := time.Date(2025, time.March, 1, 11, 30, 0, 0, time.UTC); !in.StartedAt.Equal(want) {
		t.Errorf("StartedAt = %v, want %v", in.StartedAt, want)
	}
}

func TestValidateCreate_AcceptsTimeValue(t *testing.T) {
	at := time.Date(2025, time.March, 1, 6, 30, 0, 0, time.UTC)
	in, f := newValidator().ValidateCreate(validation.Payload{"name": "Run", "startedAt": at})
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if !in.StartedAt.Equal(at) {
		t.Errorf("StartedAt = %v", in.StartedAt)
	}
}

// ---- update ----

func TestValidateUpdate_OnlyIDRequired(t *testing.T) {
	id := uuid.NewString()
	in, f := newValidator().ValidateUpdate(validation.Payload{"id": id})
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if in.ID != id || in.Name != nil || in.StartedAt != nil {
		t.Errorf("got %+v", in)
	}
}

func TestValidateUpdate_PartialName(t *testing.T) {
	in, f := newValidator().ValidateUpdate(validation.Payload{"id": uuid.NewString(), "name": "New Name"})
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if in.Name == nil || *in.Name != "New Name" {
		t.Errorf("Name = %v", in.Name)
	}
	if in.StartedAt != nil {
		t.Errorf("StartedAt = %v, want nil", in.StartedAt)
	}
}

func TestValidateUpdate_Failures(t *testing.T) {
	cases := []struct {
		name    string
		payload validation.Payload
		want    []string
	}{
		{"missing id", validation.Payload{"name": "x"}, []string{"id"}},
		{"bad id", validation.Payload{"id": "123"}, []string{"id"}},
		{"empty name", validation.Payload{"id": uuid.NewString(), "name": ""}, []string{"name"}},
		{"null name", validation.Payload{"id": uuid.NewString(), "name": nil}, []string{"name"}},
		{"bad date", validation.Payload{"id": uuid.NewString(), "startedAt": "soon"}, []string{"startedAt"}},
		{"all bad", validation.Payload{"id": 7.0, "name": "", "startedAt": false}, []string{"id", "name", "startedAt"}},
	}
	for _, tc := range cases {
		_, f := newValidator().ValidateUpdate(tc.payload)
		if f == nil {
			t.Errorf("%s: expected failure", tc.name)
			continue
		}
		got := paths(f)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Errorf("%s: paths = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// ---- dispatch by schema ----

func TestValidate_BySchema(t *testing.T) {
	v := newValidator()

	got, err := v.Validate(validation.SchemaCreateWorkout, validation.Payload{"name": "Swim", "startedAt": "2025-03-01T07:15:00Z"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(validation.CreateWorkout); !ok {
		t.Errorf("got %T, want CreateWorkout", got)
	}

	_, err = v.Validate(validation.SchemaDeleteWorkout, validation.Payload{})
	var f *validation.Failure
	if !errors.As(err, &f) || f.Issues[0].Path != "id" {
		t.Errorf("delete without id: got %v", err)
	}

	if _, err := v.Validate("nope", nil); !errors.Is(err, validation.ErrUnknownSchema) {
		t.Errorf("unknown schema: got %v", err)
	}
}
