package capability

import (
	"context"
	"image"
	"time"
)

// Console writes text for the print family of operations.
type Console interface {
	Print(ctx context.Context, s string)
}

// Random draws uniformly from [0, 1).
type Random interface {
	Rand(ctx context.Context) float64
}

// Clock reports the current wall-clock time.
type Clock interface {
	Now(ctx context.Context) time.Time
}

// Display shows an image to the user.
type Display interface {
	ShowImage(ctx context.Context, img image.Image) error
}

// Player starts playback of WAV bytes and returns without waiting for the
// sound to finish.
type Player interface {
	PlayAudio(ctx context.Context, wav []byte) error
}

// Input reads one line of user input without its line terminator.
type Input interface {
	ScanLine(ctx context.Context) (string, error)
}

// Environment exposes read-only process environment.
type Environment interface {
	// Var returns the value of an environment variable, or "" when unset.
	Var(ctx context.Context, name string) (string, error)
	Args(ctx context.Context) ([]string, error)
}

// Filesystem is the flat file surface used by the file operations.
type Filesystem interface {
	// FileExists reports whether anything exists at path. It never fails.
	FileExists(ctx context.Context, path string) bool
	ListDir(ctx context.Context, path string) ([]string, error)
	IsFile(ctx context.Context, path string) (bool, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}

// Backend is the full capability set the dispatcher runs against. Every
// method is mandatory; hosts lacking a facility return the Unsupported
// behaviour for it.
type Backend interface {
	Console
	Random
	Clock
	Display
	Player
	Input
	Environment
	Filesystem
}

// Set is a bit set of optional capabilities.
type Set uint8

const (
	CapDisplay Set = 1 << iota
	CapAudio
	CapInput
	CapEnvironment
	CapFilesystem

	CapNone Set = 0
	CapAll      = CapDisplay | CapAudio | CapInput | CapEnvironment | CapFilesystem
)

// Has reports whether every capability in c is present in s.
func (s Set) Has(c Set) bool {
	return s&c == c
}

func (s Set) String() string {
	if s == CapNone {
		return "none"
	}
	names := []struct {
		c    Set
		name string
	}{
		{CapDisplay, "display"},
		{CapAudio, "audio"},
		{CapInput, "input"},
		{CapEnvironment, "environment"},
		{CapFilesystem, "filesystem"},
	}
	out := ""
	for _, n := range names {
		if s.Has(n.c) {
			if out != "" {
				out += ","
			}
			out += n.name
		}
	}
	return out
}
