package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/rand"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/errors"
)

// DefaultSeed seeds rand unless WithSeed is used.
const DefaultSeed = 1

// Sandbox is an in-memory backend for hosts without an operating system.
// Display and audio are unsupported. Use builder methods to set it up.
type Sandbox struct {
	capability.Unsupported

	stdout bytes.Buffer
	stdin  *bufio.Reader
	rng    *rand.Rand
	env    map[string]string
	files  map[string][]byte
	now    time.Time
	args   []string
	mu     sync.Mutex
}

var _ capability.Backend = (*Sandbox)(nil)

// New creates an empty sandbox with a fixed clock at the Unix epoch.
func New() *Sandbox {
	return &Sandbox{
		stdin: bufio.NewReader(bytes.NewReader(nil)),
		rng:   rand.New(rand.NewSource(DefaultSeed)), //nolint:gosec // reproducible runs
		env:   make(map[string]string),
		files: make(map[string][]byte),
		now:   time.Unix(0, 0).UTC(),
	}
}

// WithEnv sets environment variables
func (s *Sandbox) WithEnv(env map[string]string) *Sandbox {
	s.env = env
	return s
}

// WithArgs sets command-line arguments
func (s *Sandbox) WithArgs(args []string) *Sandbox {
	s.args = args
	return s
}

// WithStdin sets stdin data
func (s *Sandbox) WithStdin(data []byte) *Sandbox {
	s.stdin = bufio.NewReader(bytes.NewReader(data))
	return s
}

// WithFiles adds files to the in-memory filesystem. Parent directories
// exist implicitly.
func (s *Sandbox) WithFiles(files map[string][]byte) *Sandbox {
	for p, data := range files {
		s.files[clean(p)] = data
	}
	return s
}

// WithSeed reseeds rand
func (s *Sandbox) WithSeed(seed int64) *Sandbox {
	s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible runs
	return s
}

// WithTime fixes the clock
func (s *Sandbox) WithTime(t time.Time) *Sandbox {
	s.now = t
	return s
}

// Stdout returns stdout contents
func (s *Sandbox) Stdout() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.stdout.Bytes())
}

// File returns the contents of a file in the in-memory filesystem
func (s *Sandbox) File(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[clean(p)]
	return data, ok
}

func (s *Sandbox) Print(_ context.Context, str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stdout.WriteString(str)
}

func (s *Sandbox) Rand(_ context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Sandbox) Now(_ context.Context) time.Time {
	return s.now
}

func (s *Sandbox) ScanLine(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := s.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.IO("Failed to read from Stdin", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (s *Sandbox) Var(_ context.Context, name string) (string, error) {
	return s.env[name], nil
}

func (s *Sandbox) Args(_ context.Context) ([]string, error) {
	return append([]string(nil), s.args...), nil
}

func (s *Sandbox) FileExists(_ context.Context, p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = clean(p)
	_, ok := s.files[p]
	return ok || s.isDir(p)
}

// ListDir returns the files and implied directories directly under p,
// joined onto p and sorted by name.
func (s *Sandbox) ListDir(_ context.Context, p string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := clean(p)
	if _, ok := s.files[dir]; ok {
		return nil, errors.New(errors.PhaseHost, errors.KindIO).
			Value(p).
			Detail("Failed to read directory %s: not a directory", p).
			Build()
	}
	if !s.isDir(dir) {
		return nil, notFound("Failed to read directory", p)
	}

	seen := make(map[string]struct{})
	for name := range s.files {
		rest, ok := under(dir, name)
		if !ok {
			continue
		}
		child, _, _ := strings.Cut(rest, "/")
		seen[child] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for child := range seen {
		names = append(names, child)
	}
	sort.Strings(names)
	out := make([]string, len(names))
	for i, child := range names {
		out[i] = path.Join(p, child)
	}
	return out, nil
}

func (s *Sandbox) IsFile(_ context.Context, p string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := clean(p)
	if _, ok := s.files[c]; ok {
		return true, nil
	}
	if s.isDir(c) {
		return false, nil
	}
	return false, notFound("Failed to read file metadata", p)
}

func (s *Sandbox) ReadFile(_ context.Context, p string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[clean(p)]
	if !ok {
		return nil, notFound("Failed to read file", p)
	}
	return bytes.Clone(data), nil
}

func (s *Sandbox) WriteFile(_ context.Context, p string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := clean(p)
	if s.isDir(c) {
		return errors.New(errors.PhaseHost, errors.KindIO).
			Value(p).
			Detail("Failed to write file %s: is a directory", p).
			Build()
	}
	s.files[c] = bytes.Clone(data)
	return nil
}

// isDir reports whether any file lives under p. The root always exists.
func (s *Sandbox) isDir(p string) bool {
	if p == "." || p == "/" {
		return true
	}
	for name := range s.files {
		if _, ok := under(p, name); ok {
			return true
		}
	}
	return false
}

// under returns the part of name below dir.
func under(dir, name string) (string, bool) {
	switch dir {
	case ".":
		if strings.HasPrefix(name, "/") {
			return "", false
		}
		return name, true
	case "/":
		return strings.CutPrefix(name, "/")
	}
	rest, ok := strings.CutPrefix(name, dir+"/")
	return rest, ok && rest != ""
}

func clean(p string) string {
	return path.Clean(p)
}

func notFound(action, p string) *errors.Error {
	return errors.New(errors.PhaseHost, errors.KindNotFound).
		Value(p).
		Detail("%s %s: no such file or directory", action, p).
		Build()
}
