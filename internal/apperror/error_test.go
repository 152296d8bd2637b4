package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromKeepsAppErrorThroughWrapping(t *testing.T) {
	base := NewNotFound("recipe", int64(7))
	wrapped := fmt.Errorf("load recipe: %w", base)

	got := From(wrapped)
	if got != base {
		t.Fatalf("expected the original AppError, got %+v", got)
	}
	if !IsNotFound(wrapped) {
		t.Fatalf("expected IsNotFound through wrapping")
	}
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("disk full")
	got := From(cause)
	if got.HTTPStatus != http.StatusInternalServerError || got.Code != CodeInternal {
		t.Fatalf("unexpected error: %+v", got)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestWithDetail(t *testing.T) {
	e := NewValidation("bad input").WithDetail("field", "quantity")
	if e.Details["field"] != "quantity" {
		t.Fatalf("details = %v", e.Details)
	}
}
