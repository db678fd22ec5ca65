package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindChannelCount,
				Op:     "imwrite",
				Detail: "channel count is 5",
			},
			contains: []string{"[encode]", "channel_count", "in imwrite", "channel count is 5"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidData,
			},
			contains: []string{"[decode]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindIO,
				Detail: "read file",
				Cause:  errors.New("open x: no such file or directory"),
			},
			contains: []string{"[host]", "io", "read file", "caused by", "no such file or directory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseHost,
		Kind:  KindIO,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseEncode,
		Kind:   KindRankMismatch,
		Detail: "rank 4",
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindRankMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindRankMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindChannelCount}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindRankMismatch}) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseHost, KindIO).
		Op("freadstr").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "file", "directory").
		Build()

	if err.Phase != PhaseHost {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
	}
	if err.Kind != KindIO {
		t.Errorf("Kind = %v, want %v", err.Kind, KindIO)
	}
	if err.Op != "freadstr" {
		t.Errorf("Op = %v, want freadstr", err.Op)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected file, got directory" {
		t.Errorf("Detail = %v, want 'expected file, got directory'", err.Detail)
	}
}

func TestWithOp(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		base := Unsupported(PhaseHost, "File IO not supported in this environment")
		got := WithOp(base, "flistdir")
		var e *Error
		if !errors.As(got, &e) {
			t.Fatalf("WithOp returned %T", got)
		}
		if e.Op != "flistdir" {
			t.Errorf("Op = %q, want flistdir", e.Op)
		}
		if base.Op != "" {
			t.Error("WithOp must not mutate the original error")
		}
	})

	t.Run("keeps existing op", func(t *testing.T) {
		base := &Error{Phase: PhaseHost, Kind: KindIO, Op: "inner"}
		var e *Error
		if !errors.As(WithOp(base, "outer"), &e) || e.Op != "inner" {
			t.Errorf("expected op to stay inner, got %v", e)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		got := WithOp(errors.New("boom"), "import")
		if !strings.Contains(got.Error(), "boom") || !strings.Contains(got.Error(), "import") {
			t.Errorf("unexpected message %q", got.Error())
		}
	})

	t.Run("nil", func(t *testing.T) {
		if WithOp(nil, "show") != nil {
			t.Error("WithOp(nil) should be nil")
		}
	})
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("RankMismatch", func(t *testing.T) {
		err := RankMismatch(PhaseEncode, 4, "Audio must be a rank 1 or 2 numeric array, but it is rank 4")
		if err.Kind != KindRankMismatch || err.Value != 4 {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("ChannelCount", func(t *testing.T) {
		err := ChannelCount(PhaseEncode, 5)
		if err.Kind != KindChannelCount {
			t.Errorf("Kind = %v, want %v", err.Kind, KindChannelCount)
		}
		if !strings.Contains(err.Detail, "between 1 and 4 but it is 5") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		err := ShapeMismatch([]int{2, 3}, 5)
		if err.Kind != KindShapeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindShapeMismatch)
		}
		if !strings.Contains(err.Detail, "[2 3]") || !strings.Contains(err.Detail, "5") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseHost, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %q should include the bytes", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseHost, "Playing audio not supported in this environment")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Precondition", func(t *testing.T) {
		err := Precondition("Stack must be empty before import, but there are 2 items on it", 2)
		if err.Kind != KindPrecondition || err.Value != 2 {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("StackUnderflow", func(t *testing.T) {
		err := StackUnderflow(2)
		if err.Kind != KindStackUnderflow || !strings.Contains(err.Detail, "argument 2") {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("IO", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := IO("write file", cause)
		if err.Phase != PhaseHost || !errors.Is(err, cause) {
			t.Errorf("unexpected %+v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseDispatch, "operation", "frobnicate")
		if !strings.Contains(err.Error(), `"frobnicate"`) {
			t.Errorf("message %q should quote the name", err.Error())
		}
	})
}
