package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("id", "post id must be an integer"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid("Invalid comment data", []FieldViolation{{Field: "text", Rule: "required"}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "emma_s"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("service/feed: loading post: %w", NotFound("post", "7")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "7"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("post", "42"),
			wantMessage: "post not found with id 42",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("text", "text is required"),
			wantMessage: "text is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("user", "me"),
			wantMessage: "user conflict with id me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInvalidCarriesDetails(t *testing.T) {
	details := []FieldViolation{
		{Field: "text", Rule: "required", Message: "text is required"},
		{Field: "postId", Rule: "gt", Message: "postId is invalid"},
	}
	err := Invalid("Invalid comment data", details)

	if err.Field != "text" {
		t.Errorf("Field = %q, want %q", err.Field, "text")
	}
	if len(err.Details) != 2 {
		t.Fatalf("len(Details) = %d, want 2", len(err.Details))
	}
	if err.Details[1].Field != "postId" {
		t.Errorf("Details[1].Field = %q, want %q", err.Details[1].Field, "postId")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("wrap: %w", NotFound("user", "1"))) {
		t.Error("IsNotFound() = false for wrapped NotFound")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("IsNotFound() = true for plain error")
	}
}
