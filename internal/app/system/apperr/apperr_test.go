package apperr

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode string
	}{
		{"nil", nil, KindUnknown, ""},
		{"no documents", mongo.ErrNoDocuments, KindNotFound, CodeGroupNotFound},
		{"wrapped no documents", fmt.Errorf("find: %w", mongo.ErrNoDocuments), KindNotFound, CodeGroupNotFound},
		{"network", errors.New("connection reset"), KindTransient, CodeStoreFailure},
		{"already typed", Conflict(CodeGroupFull, "full"), KindConflict, CodeGroupFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Store("load group", CodeGroupNotFound, tt.err)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("Store(nil) = %v, want nil", err)
				}
				return
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf = %v, want %v", got, tt.wantKind)
			}
			if got := CodeOf(err); got != tt.wantCode {
				t.Errorf("CodeOf = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Transient(CodeStoreFailure, "write", errors.New("timeout"))) {
		t.Error("transient error should be retryable")
	}
	if Retryable(Unauthorized(CodeForbidden, "no")) {
		t.Error("unauthorized error should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("untyped error should not be retryable")
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := Transient(CodeStoreFailure, "write", base)
	if !errors.Is(err, base) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if !HasCode(fmt.Errorf("outer: %w", err), CodeStoreFailure) {
		t.Error("HasCode should see through wrapping")
	}
}

func TestKindString(t *testing.T) {
	if KindConflict.String() != "conflict" {
		t.Errorf("KindConflict.String() = %q", KindConflict.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99).String() = %q", Kind(99).String())
	}
}
