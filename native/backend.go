package native

import (
	"bufio"
	"context"
	"image"
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/errors"
)

// Backend runs operations against the local operating system. Use builder
// methods to set it up.
type Backend struct {
	out      *bufio.Writer
	in       *bufio.Reader
	rng      *rand.Rand
	display  capability.Display
	player   capability.Player
	lookup   func(string) (string, bool)
	now      func() time.Time
	args     []string
	outMu    sync.Mutex
	inMu     sync.Mutex
	rngMu    sync.Mutex
	closeMu  sync.Mutex
	closed   bool
	hasInput bool
}

var _ capability.Backend = (*Backend)(nil)

// New creates a backend wired to the process stdio, environment and
// arguments, the terminal display and the speaker.
func New() *Backend {
	b := &Backend{
		out:      bufio.NewWriter(os.Stdout),
		in:       bufio.NewReader(os.Stdin),
		lookup:   os.LookupEnv,
		now:      time.Now,
		args:     os.Args,
		hasInput: true,
	}
	b.display = NewTerminalDisplay(b)
	b.player = NewSpeaker()
	return b
}

// WithStdout sets the writer used by the print operations
func (b *Backend) WithStdout(w io.Writer) *Backend {
	b.out = bufio.NewWriter(w)
	return b
}

// WithStdin sets the reader used by scan. A nil reader disables input.
func (b *Backend) WithStdin(r io.Reader) *Backend {
	if r == nil {
		b.in = nil
		b.hasInput = false
		return b
	}
	b.in = bufio.NewReader(r)
	b.hasInput = true
	return b
}

// WithEnv replaces the process environment with a fixed map
func (b *Backend) WithEnv(env map[string]string) *Backend {
	b.lookup = func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	return b
}

// WithArgs sets the arguments returned by args
func (b *Backend) WithArgs(args []string) *Backend {
	b.args = args
	return b
}

// WithSeed makes rand deterministic
func (b *Backend) WithSeed(seed int64) *Backend {
	b.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not used for secrets
	return b
}

// WithClock overrides the wall clock
func (b *Backend) WithClock(now func() time.Time) *Backend {
	b.now = now
	return b
}

// WithDisplay sets the image display strategy. A nil display makes imshow
// unsupported.
func (b *Backend) WithDisplay(d capability.Display) *Backend {
	b.display = d
	return b
}

// WithPlayer sets the audio playback strategy. A nil player makes
// audioplay unsupported.
func (b *Backend) WithPlayer(p capability.Player) *Backend {
	b.player = p
	return b
}

// Print writes s to stdout and flushes.
func (b *Backend) Print(_ context.Context, s string) {
	b.outMu.Lock()
	defer b.outMu.Unlock()
	_, _ = b.out.WriteString(s)
	_ = b.out.Flush()
}

// Rand draws from a generator seeded from the clock on first use.
func (b *Backend) Rand(_ context.Context) float64 {
	b.rngMu.Lock()
	defer b.rngMu.Unlock()
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not used for secrets
	}
	return b.rng.Float64()
}

func (b *Backend) Now(_ context.Context) time.Time {
	return b.now()
}

// ScanLine reads one line from stdin without its terminator. At end of
// input it returns whatever was read, possibly "".
func (b *Backend) ScanLine(_ context.Context) (string, error) {
	if !b.hasInput {
		return "", errors.Unsupported(errors.PhaseHost, capability.MsgScanLine)
	}
	b.inMu.Lock()
	defer b.inMu.Unlock()

	line, err := b.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.IO("Failed to read from Stdin", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (b *Backend) Var(_ context.Context, name string) (string, error) {
	v, _ := b.lookup(name)
	return v, nil
}

func (b *Backend) Args(_ context.Context) ([]string, error) {
	out := make([]string, len(b.args))
	copy(out, b.args)
	return out, nil
}

func (b *Backend) ShowImage(ctx context.Context, img image.Image) error {
	if b.display == nil {
		return capability.Unsupported{}.ShowImage(ctx, img)
	}
	return b.display.ShowImage(ctx, img)
}

func (b *Backend) PlayAudio(ctx context.Context, wav []byte) error {
	if b.player == nil {
		return capability.Unsupported{}.PlayAudio(ctx, wav)
	}
	return b.player.PlayAudio(ctx, wav)
}

// Close flushes stdout and releases retained audio players.
func (b *Backend) Close() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	b.outMu.Lock()
	_ = b.out.Flush()
	b.outMu.Unlock()

	if c, ok := b.player.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
