package capability

import (
	"context"
	"time"

	"github.com/wippyai/arrayio/errors"
)

// composite routes each capability to its own implementation.
type composite struct {
	Console
	Random
	Clock
	Display
	Player
	Input
	Environment
	Filesystem
}

// Adapt turns a partial host into a Backend. The host must implement
// Console and Random; every other capability it does not implement is
// served by Unsupported.
func Adapt(partial any) (Backend, error) {
	if b, ok := partial.(Backend); ok {
		return b, nil
	}
	console, ok := partial.(Console)
	if !ok {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(partial).
			Detail("backend %T does not implement Console", partial).
			Build()
	}
	random, ok := partial.(Random)
	if !ok {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(partial).
			Detail("backend %T does not implement Random", partial).
			Build()
	}

	var fallback Unsupported
	c := &composite{
		Console:     console,
		Random:      random,
		Clock:       fallback,
		Display:     fallback,
		Player:      fallback,
		Input:       fallback,
		Environment: fallback,
		Filesystem:  fallback,
	}
	if v, ok := partial.(Clock); ok {
		c.Clock = v
	}
	if v, ok := partial.(Display); ok {
		c.Display = v
	}
	if v, ok := partial.(Player); ok {
		c.Player = v
	}
	if v, ok := partial.(Input); ok {
		c.Input = v
	}
	if v, ok := partial.(Environment); ok {
		c.Environment = v
	}
	if v, ok := partial.(Filesystem); ok {
		c.Filesystem = v
	}
	return c, nil
}

// Mask returns a Backend that keeps only the optional capabilities in caps.
// Console, Random and Clock are always kept.
func Mask(b Backend, caps Set) Backend {
	if caps.Has(CapAll) {
		return b
	}
	var fallback Unsupported
	c := &composite{
		Console:     b,
		Random:      b,
		Clock:       b,
		Display:     fallback,
		Player:      fallback,
		Input:       fallback,
		Environment: fallback,
		Filesystem:  fallback,
	}
	if caps.Has(CapDisplay) {
		c.Display = b
	}
	if caps.Has(CapAudio) {
		c.Player = b
	}
	if caps.Has(CapInput) {
		c.Input = b
	}
	if caps.Has(CapEnvironment) {
		c.Environment = b
	}
	if caps.Has(CapFilesystem) {
		c.Filesystem = b
	}
	return c
}

// Discard is a Console that drops all output.
type Discard struct{}

func (Discard) Print(_ context.Context, _ string) {}

// Fixed is a Random and Clock that always returns the same values.
type Fixed struct {
	Time  time.Time
	Value float64
}

func (f Fixed) Rand(_ context.Context) float64 { return f.Value }

func (f Fixed) Now(_ context.Context) time.Time { return f.Time }

var (
	_ Backend = (*composite)(nil)
	_ Display = Unsupported{}
	_ Console = Discard{}
	_ Random  = Fixed{}
	_ Clock   = Fixed{}
)
