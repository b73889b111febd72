package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Lamp"}`))
	var dest samplePayload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if dest.Name != "Lamp" {
		t.Fatalf("unexpected dest %+v", dest)
	}
}

func TestDecodeJSONBodyAggregatesFieldErrors(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","email":"nope"}`))
	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details should map fields, got %T", typed.Details())
	}
	if _, found := details["name"]; !found {
		t.Fatalf("missing name detail in %v", details)
	}
	if _, found := details["email"]; !found {
		t.Fatalf("missing email detail in %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok","bogus":true}`))
	var dest samplePayload
	if err := DecodeJSONBody(r, &dest); err == nil {
		t.Fatal("expected unknown-field rejection")
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=30", nil)
	got, err := ParseQueryInt(r, "limit", 25, 1, 100)
	if err != nil || got != 30 {
		t.Fatalf("got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 25, 1, 100)
	if err != nil || got != 25 {
		t.Fatalf("default: got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=9999", nil)
	if _, err = ParseQueryInt(r, "limit", 25, 1, 100); err == nil {
		t.Fatal("expected range error")
	}
}

func TestParseQueryUUID(t *testing.T) {
	id := uuid.New()
	r := httptest.NewRequest("GET", "/?categoryId="+id.String(), nil)
	got, err := ParseQueryUUID(r, "categoryId")
	if err != nil || got != id {
		t.Fatalf("got %s, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?categoryId=nope", nil)
	if _, err := ParseQueryUUID(r, "categoryId"); err == nil {
		t.Fatal("expected uuid error")
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryUUID(r, "categoryId")
	if err != nil || got != uuid.Nil {
		t.Fatalf("absent param should yield Nil, got %s, %v", got, err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 0); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
