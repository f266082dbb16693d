package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}

func TestKindOf_Wrapped(t *testing.T) {
	base := &Error{Op: "list", Kind: KindShape, Message: "bad"}
	wrapped := fmt.Errorf("load emails: %w", base)

	kind, ok := KindOf(wrapped)
	if !ok || kind != KindShape {
		t.Errorf("KindOf() = %v, %v; want %v, true", kind, ok, KindShape)
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() should not classify foreign errors")
	}
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Op: "send", Kind: KindBackend, Status: 502, Message: "bad gateway"}, "send: backend error (502): bad gateway"},
		{&Error{Op: "sync", Kind: KindNetwork, Err: context.DeadlineExceeded}, "sync: network failure: context deadline exceeded"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := networkErr("draft", context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Error("network error should unwrap to its cause")
	}
}

func TestTone_NextCyclesAndParse(t *testing.T) {
	seen := map[Tone]bool{}
	tone := DefaultTone
	for range Tones() {
		seen[tone] = true
		tone = tone.Next()
	}
	if tone != DefaultTone {
		t.Errorf("cycling all tones ended at %q, want %q", tone, DefaultTone)
	}
	if len(seen) != len(Tones()) {
		t.Errorf("visited %d tones, want %d", len(seen), len(Tones()))
	}
	if Tone("bogus").Next() != DefaultTone {
		t.Error("unknown tone should cycle back to the default")
	}

	if _, err := ParseTone("friendly"); err != nil {
		t.Errorf("ParseTone(friendly) error = %v", err)
	}
	if _, err := ParseTone("Professional"); err == nil {
		t.Error("ParseTone should be case sensitive")
	}
}
