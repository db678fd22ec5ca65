package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/arrayio/errors"
)

func TestSandbox_Console(t *testing.T) {
	ctx := context.Background()
	sb := New().WithStdin([]byte("one\r\ntwo\n"))

	sb.Print(ctx, "a")
	sb.Print(ctx, "b\n")
	if string(sb.Stdout()) != "ab\n" {
		t.Errorf("Stdout = %q", sb.Stdout())
	}

	for _, want := range []string{"one", "two", ""} {
		got, err := sb.ScanLine(ctx)
		if err != nil {
			t.Fatalf("ScanLine: %v", err)
		}
		if got != want {
			t.Errorf("ScanLine = %q, want %q", got, want)
		}
	}
}

func TestSandbox_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, b := New(), New()
	for i := 0; i < 5; i++ {
		x, y := a.Rand(ctx), b.Rand(ctx)
		if x != y {
			t.Fatal("sandboxes should share a default seed")
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Rand = %v out of range", x)
		}
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := New().WithTime(ts).Now(ctx); !got.Equal(ts) {
		t.Errorf("Now = %v", got)
	}
	if got := New().Now(ctx).Unix(); got != 0 {
		t.Errorf("default clock = %d, want 0", got)
	}
}

func TestSandbox_EnvArgs(t *testing.T) {
	ctx := context.Background()
	sb := New().WithEnv(map[string]string{"USER": "me"}).WithArgs([]string{"a", "b"})

	if v, _ := sb.Var(ctx, "USER"); v != "me" {
		t.Errorf("Var(USER) = %q", v)
	}
	if v, err := sb.Var(ctx, "NOPE"); err != nil || v != "" {
		t.Errorf("Var(NOPE) = %q, %v", v, err)
	}
	args, _ := sb.Args(ctx)
	if strings.Join(args, " ") != "a b" {
		t.Errorf("Args = %v", args)
	}
}

func TestSandbox_Filesystem(t *testing.T) {
	ctx := context.Background()
	sb := New().WithFiles(map[string][]byte{
		"data/b.txt":       []byte("b"),
		"data/a.txt":       []byte("a"),
		"data/deep/c.txt":  []byte("c"),
		"./top.txt":        []byte("top"),
		"/abs/outside.txt": []byte("x"),
	})

	tests := []struct {
		dir  string
		want []string
	}{
		{"data", []string{"data/a.txt", "data/b.txt", "data/deep"}},
		{"data/", []string{"data/a.txt", "data/b.txt", "data/deep"}},
		{".", []string{"data", "top.txt"}},
		{"/", []string{"/abs"}},
		{"data/deep", []string{"data/deep/c.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got, err := sb.ListDir(ctx, tt.dir)
			if err != nil {
				t.Fatalf("ListDir: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ListDir(%q) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}

	if !sb.FileExists(ctx, "data") || !sb.FileExists(ctx, "top.txt") || sb.FileExists(ctx, "missing") {
		t.Error("FileExists mismatch")
	}
	if ok, err := sb.IsFile(ctx, "data/a.txt"); !ok || err != nil {
		t.Errorf("IsFile(file) = %v, %v", ok, err)
	}
	if ok, err := sb.IsFile(ctx, "data/deep"); ok || err != nil {
		t.Errorf("IsFile(dir) = %v, %v", ok, err)
	}
	if _, err := sb.IsFile(ctx, "missing"); err == nil {
		t.Error("IsFile(missing) should fail")
	}
}

func TestSandbox_ReadWrite(t *testing.T) {
	ctx := context.Background()
	sb := New().WithFiles(map[string][]byte{"dir/x": []byte("x")})

	if err := sb.WriteFile(ctx, "out/new.txt", []byte("hello")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := sb.ReadFile(ctx, "out/new.txt")
	if err != nil || string(data) != "hello" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}
	data[0] = 'j'
	if stored, _ := sb.File("out/new.txt"); string(stored) != "hello" {
		t.Error("ReadFile should return a copy")
	}

	_, err = sb.ReadFile(ctx, "nope")
	if e, ok := err.(*errors.Error); !ok || e.Kind != errors.KindNotFound {
		t.Errorf("ReadFile(nope) = %v", err)
	}
	if err := sb.WriteFile(ctx, "dir", nil); err == nil {
		t.Error("writing over a directory should fail")
	}
	if _, err := sb.ListDir(ctx, "dir/x"); err == nil {
		t.Error("listing a file should fail")
	}
	if _, err := sb.ListDir(ctx, "ghost"); err == nil {
		t.Error("listing a missing directory should fail")
	}
}

func TestSandbox_MediaUnsupported(t *testing.T) {
	ctx := context.Background()
	sb := New()
	if err := sb.ShowImage(ctx, nil); err == nil {
		t.Error("ShowImage should be unsupported")
	}
	if err := sb.PlayAudio(ctx, nil); err == nil {
		t.Error("PlayAudio should be unsupported")
	}
}
