package capability

import (
	"context"
	stderrors "errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/arrayio/errors"
)

type printer struct {
	out strings.Builder
}

func (p *printer) Print(_ context.Context, s string) { p.out.WriteString(s) }
func (p *printer) Rand(_ context.Context) float64    { return 0.25 }

type printerWithEnv struct {
	printer
}

func (p *printerWithEnv) Var(_ context.Context, name string) (string, error) {
	return "value-of-" + name, nil
}

func (p *printerWithEnv) Args(_ context.Context) ([]string, error) {
	return []string{"a", "b"}, nil
}

func TestUnsupported_Messages(t *testing.T) {
	ctx := context.Background()
	var u Unsupported

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"ShowImage", func() error { return u.ShowImage(ctx, image.NewGray(image.Rect(0, 0, 1, 1))) }, MsgShowImage},
		{"PlayAudio", func() error { return u.PlayAudio(ctx, nil) }, MsgPlayAudio},
		{"ScanLine", func() error { _, err := u.ScanLine(ctx); return err }, MsgScanLine},
		{"Var", func() error { _, err := u.Var(ctx, "HOME"); return err }, MsgVar},
		{"Args", func() error { _, err := u.Args(ctx); return err }, MsgArgs},
		{"ListDir", func() error { _, err := u.ListDir(ctx, "."); return err }, MsgFileIO},
		{"IsFile", func() error { _, err := u.IsFile(ctx, "x"); return err }, MsgFileIO},
		{"ReadFile", func() error { _, err := u.ReadFile(ctx, "x"); return err }, MsgFileIO},
		{"WriteFile", func() error { return u.WriteFile(ctx, "x", nil) }, MsgFileIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Kind != errors.KindUnsupported {
				t.Errorf("Kind = %s, want %s", e.Kind, errors.KindUnsupported)
			}
			if e.Detail != tt.want {
				t.Errorf("Detail = %q, want %q", e.Detail, tt.want)
			}
		})
	}
}

func TestUnsupported_NeverFailing(t *testing.T) {
	ctx := context.Background()
	var u Unsupported
	if u.FileExists(ctx, "/") {
		t.Error("FileExists should report false")
	}
	before := time.Now()
	if u.Now(ctx).Before(before) {
		t.Error("Now should read the wall clock")
	}
}

func TestAdapt_RequiresConsoleAndRandom(t *testing.T) {
	if _, err := Adapt(struct{}{}); err == nil {
		t.Fatal("expected error for empty host")
	}
	if _, err := Adapt(Discard{}); err == nil {
		t.Fatal("expected error for host without Random")
	}
}

func TestAdapt_FillsMissing(t *testing.T) {
	ctx := context.Background()
	p := &printer{}
	b, err := Adapt(p)
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}

	b.Print(ctx, "hi")
	if p.out.String() != "hi" {
		t.Errorf("Print not routed, got %q", p.out.String())
	}
	if got := b.Rand(ctx); got != 0.25 {
		t.Errorf("Rand = %v", got)
	}
	if _, err := b.Var(ctx, "X"); !stderrors.Is(err, errors.New(errors.PhaseHost, errors.KindUnsupported).Build()) {
		t.Errorf("Var should be unsupported, got %v", err)
	}
	if b.FileExists(ctx, "anything") {
		t.Error("FileExists should be false")
	}
}

func TestAdapt_KeepsImplemented(t *testing.T) {
	ctx := context.Background()
	b, err := Adapt(&printerWithEnv{})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	v, err := b.Var(ctx, "HOME")
	if err != nil {
		t.Fatalf("Var: %v", err)
	}
	if v != "value-of-HOME" {
		t.Errorf("Var = %q", v)
	}
	args, err := b.Args(ctx)
	if err != nil || len(args) != 2 {
		t.Errorf("Args = %v, %v", args, err)
	}
	if err := b.ShowImage(ctx, nil); err == nil {
		t.Error("ShowImage should be unsupported")
	}
}

func TestMask(t *testing.T) {
	ctx := context.Background()
	full, err := Adapt(&printerWithEnv{})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}

	if Mask(full, CapAll) != full {
		t.Error("Mask with every capability should return the backend unchanged")
	}

	masked := Mask(full, CapNone)
	if _, err := masked.Var(ctx, "HOME"); err == nil {
		t.Error("masked Var should fail")
	}
	if got := masked.Rand(ctx); got != 0.25 {
		t.Errorf("Rand should pass through, got %v", got)
	}

	kept := Mask(full, CapEnvironment)
	if _, err := kept.Var(ctx, "HOME"); err != nil {
		t.Errorf("Var should pass through: %v", err)
	}
}

func TestSet(t *testing.T) {
	s := CapDisplay | CapFilesystem
	if !s.Has(CapDisplay) || s.Has(CapAudio) {
		t.Errorf("Has mismatch for %v", s)
	}
	if got := s.String(); got != "display,filesystem" {
		t.Errorf("String = %q", got)
	}
	if got := CapNone.String(); got != "none" {
		t.Errorf("String = %q", got)
	}
}

func TestFixed(t *testing.T) {
	ts := time.Unix(100, 0)
	f := Fixed{Time: ts, Value: 0.5}
	if f.Rand(context.Background()) != 0.5 || !f.Now(context.Background()).Equal(ts) {
		t.Error("Fixed should return its fields")
	}
}
