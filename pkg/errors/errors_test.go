package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"validation", Validation("personnel_code is required"), KindValidation},
		{"conflict", Conflict("open entry exists"), KindConflict},
		{"not found", NotFound("no open entry"), KindNotFound},
		{"storage", Storage("insert failed", cause), KindStorage},
		{"wrapped", fmt.Errorf("ledger: %w", Conflict("open entry exists")), KindConflict},
		{"plain error", cause, KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	sentinel := NotFound("record not found")
	wrapped := fmt.Errorf("delete: %w", sentinel)

	if !Is(wrapped, sentinel) {
		t.Error("wrapped sentinel should match with Is")
	}
	if Is(wrapped, NotFound("record not found")) {
		t.Error("distinct values with the same message must not match")
	}
}

func TestMessageAndDetail(t *testing.T) {
	cause := stderrors.New("duplicate key value violates unique constraint")
	err := Storage("restore failed", cause)

	if Message(err) != "restore failed" {
		t.Errorf("unexpected message %q", Message(err))
	}
	if Detail(err) != cause.Error() {
		t.Errorf("unexpected detail %q", Detail(err))
	}
	if !Is(err, cause) {
		t.Error("storage error should unwrap to its cause")
	}
	if Detail(Validation("bad")) != "" {
		t.Error("validation errors carry no detail")
	}
	if err.Error() != "restore failed: duplicate key value violates unique constraint" {
		t.Errorf("unexpected Error() %q", err.Error())
	}
}
