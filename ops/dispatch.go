package ops

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/codec"
	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/value"
)

// Evaluator is the value stack an operation runs against.
type Evaluator interface {
	// Pop removes the top value. arg is the 1-based argument number used
	// in error messages.
	Pop(arg int) (value.Value, error)
	Push(v value.Value)
	StackSize() int
	// Import evaluates source as a module loaded from path.
	Import(ctx context.Context, source, path string) error
}

// Dispatcher runs catalogue operations against a backend.
type Dispatcher struct {
	backend capability.Backend
}

// New creates a dispatcher for backend.
func New(backend capability.Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Backend returns the backend operations run against.
func (d *Dispatcher) Backend() capability.Backend {
	return d.backend
}

// RunNamed looks up an operation by name and runs it.
func (d *Dispatcher) RunNamed(ctx context.Context, name string, ev Evaluator) error {
	op, ok := Lookup(name)
	if !ok {
		return errors.NotFound(errors.PhaseDispatch, "operation", name)
	}
	return d.Run(ctx, op, ev)
}

// Run pops the operation's arguments, performs it and pushes its result.
// Errors carry the operation name.
func (d *Dispatcher) Run(ctx context.Context, op Op, ev Evaluator) (err error) {
	if !op.Valid() {
		return errors.NotFound(errors.PhaseDispatch, "operation", op.String())
	}

	start := time.Now()
	defer func() {
		Logger().Debug("dispatch",
			zap.String("op", op.Name()),
			zap.Int("args", op.Args()),
			zap.Int("outputs", op.Outputs()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}()

	return errors.WithOp(d.run(ctx, op, ev), op.Name())
}

func (d *Dispatcher) run(ctx context.Context, op Op, ev Evaluator) error {
	b := d.backend
	switch op {
	case Show:
		v, err := ev.Pop(1)
		if err != nil {
			return err
		}
		b.Print(ctx, v.Grid())
		b.Print(ctx, "\n")

	case Prin, Print:
		v, err := ev.Pop(1)
		if err != nil {
			return err
		}
		b.Print(ctx, v.String())
		if op == Print {
			b.Print(ctx, "\n")
		}

	case Scan:
		line, err := b.ScanLine(ctx)
		if err != nil {
			return err
		}
		ev.Push(value.Str(line))

	case Args:
		args, err := b.Args(ctx)
		if err != nil {
			return err
		}
		ev.Push(value.Strings(args))

	case Var:
		name, err := popString(ev, 1, "Argument to var must be a string")
		if err != nil {
			return err
		}
		v, err := b.Var(ctx, name)
		if err != nil {
			return err
		}
		ev.Push(value.Str(v))

	case Rand:
		ev.Push(value.Number(b.Rand(ctx)))

	case FReadStr:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		s, err := readText(ctx, b, path)
		if err != nil {
			return err
		}
		ev.Push(value.Str(s))

	case FWriteStr:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		contents, err := popString(ev, 2, "Contents must be a string")
		if err != nil {
			return err
		}
		return b.WriteFile(ctx, path, []byte(contents))

	case FReadBytes:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		data, err := b.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		ev.Push(value.FromBytes(data))

	case FWriteBytes:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		v, err := ev.Pop(2)
		if err != nil {
			return err
		}
		data, ok := v.AsBytes()
		if !ok {
			return errors.TypeMismatch(errors.PhaseValidate, "Contents must be a byte array")
		}
		return b.WriteFile(ctx, path, data)

	case FLines:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		s, err := readText(ctx, b, path)
		if err != nil {
			return err
		}
		ev.Push(value.Strings(SplitLines(s)))

	case FExists:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		ev.Push(value.Bool(b.FileExists(ctx, path)))

	case FListDir:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		paths, err := b.ListDir(ctx, path)
		if err != nil {
			return err
		}
		ev.Push(value.Strings(paths))

	case FIsFile:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		isFile, err := b.IsFile(ctx, path)
		if err != nil {
			return err
		}
		ev.Push(value.Bool(isFile))

	case Import:
		path, err := popString(ev, 1, "Import path must be a string")
		if err != nil {
			return err
		}
		if n := ev.StackSize(); n > 0 {
			return errors.Precondition(
				fmt.Sprintf("Stack must be empty before import, but there are %d items on it", n), n)
		}
		source, err := readText(ctx, b, path)
		if err != nil {
			return err
		}
		return ev.Import(ctx, source, path)

	case Now:
		t := b.Now(ctx)
		ev.Push(value.Number(float64(t.UnixNano()) / float64(time.Second)))

	case ImRead:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		data, err := b.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		img, err := codec.DecodeImage(data)
		if err != nil {
			return err
		}
		ev.Push(img)

	case ImWrite:
		path, err := popPath(ev)
		if err != nil {
			return err
		}
		v, err := ev.Pop(2)
		if err != nil {
			return err
		}
		data, err := codec.EncodeImageBytes(v, codec.FormatFromPath(path))
		if err != nil {
			return err
		}
		return b.WriteFile(ctx, path, data)

	case ImShow:
		v, err := ev.Pop(1)
		if err != nil {
			return err
		}
		img, err := codec.EncodeImage(v)
		if err != nil {
			return err
		}
		return b.ShowImage(ctx, img.Image)

	case AudioPlay:
		v, err := ev.Pop(1)
		if err != nil {
			return err
		}
		wav, err := codec.EncodeWAV(v)
		if err != nil {
			return err
		}
		return b.PlayAudio(ctx, wav)
	}
	return nil
}

// SplitLines splits s on "\n", dropping a trailing "\r" from each line and
// the empty line after a final terminator.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func popPath(ev Evaluator) (string, error) {
	return popString(ev, 1, "Path must be a string")
}

func popString(ev Evaluator, arg int, msg string) (string, error) {
	v, err := ev.Pop(arg)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
			Value(v.Kind().String()).
			Detail("%s", msg).
			Build()
	}
	return s, nil
}

func readText(ctx context.Context, b capability.Backend, path string) (string, error) {
	data, err := b.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, data)
	}
	return string(data), nil
}
