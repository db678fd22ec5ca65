package machine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/ops"
	"github.com/wippyai/arrayio/value"
)

// MaxImportDepth bounds nested imports.
const MaxImportDepth = 64

// Machine is a value stack driven by a small word language. It implements
// ops.Evaluator.
type Machine struct {
	dispatcher *ops.Dispatcher
	stack      []value.Value
	imports    []string
}

var _ ops.Evaluator = (*Machine)(nil)

// New creates a machine that runs operations through d.
func New(d *ops.Dispatcher) *Machine {
	return &Machine{dispatcher: d}
}

func (m *Machine) Pop(arg int) (value.Value, error) {
	n := len(m.stack)
	if n == 0 {
		return value.Value{}, errors.StackUnderflow(arg)
	}
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v, nil
}

func (m *Machine) Push(v value.Value) {
	m.stack = append(m.stack, v)
}

func (m *Machine) StackSize() int {
	return len(m.stack)
}

// Stack returns a copy of the stack, bottom first.
func (m *Machine) Stack() []value.Value {
	return append([]value.Value(nil), m.stack...)
}

// Reset empties the stack.
func (m *Machine) Reset() {
	m.stack = m.stack[:0]
}

// Import runs source on this machine.
func (m *Machine) Import(ctx context.Context, source, path string) error {
	for _, p := range m.imports {
		if p == path {
			return errors.New(errors.PhaseDispatch, errors.KindPrecondition).
				Value(path).
				Detail("cyclic import of %s", path).
				Build()
		}
	}
	if len(m.imports) >= MaxImportDepth {
		return errors.New(errors.PhaseDispatch, errors.KindPrecondition).
			Value(len(m.imports)).
			Detail("imports nested deeper than %d", MaxImportDepth).
			Build()
	}
	m.imports = append(m.imports, path)
	defer func() { m.imports = m.imports[:len(m.imports)-1] }()

	if err := m.Exec(ctx, source); err != nil {
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Value(path).
			Cause(err).
			Detail("Failed to import %s", path).
			Build()
	}
	return nil
}

// Run runs a single catalogue operation.
func (m *Machine) Run(ctx context.Context, op ops.Op) error {
	return m.dispatcher.Run(ctx, op, m)
}

// Exec tokenizes and runs src. Execution stops at the first error; values
// pushed before it stay on the stack.
func (m *Machine) Exec(ctx context.Context, src string) error {
	toks, err := tokenize(src)
	if err != nil {
		return err
	}
	for _, t := range toks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.step(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step(ctx context.Context, t token) error {
	switch t.kind {
	case tokNumber:
		m.Push(value.Number(t.num))
		return nil
	case tokString:
		m.Push(value.Str(t.text))
		return nil
	case tokVector:
		m.Push(value.Vector(t.nums...))
		return nil
	}

	switch t.text {
	case "dup":
		v, err := m.Pop(1)
		if err != nil {
			return err
		}
		m.Push(v)
		m.Push(v)
	case "drop":
		_, err := m.Pop(1)
		return err
	case "swap":
		a, err := m.Pop(1)
		if err != nil {
			return err
		}
		b, err := m.Pop(2)
		if err != nil {
			return err
		}
		m.Push(a)
		m.Push(b)
	case "reshape":
		return m.reshape()
	default:
		op, ok := ops.Lookup(t.text)
		if !ok {
			return errors.New(errors.PhaseDispatch, errors.KindNotFound).
				Value(t.text).
				Detail("unknown word %q at line %d", t.text, t.line).
				Build()
		}
		return m.Run(ctx, op)
	}
	return nil
}

// reshape pops a shape vector, then a value, and pushes the value with the
// new shape.
func (m *Machine) reshape() error {
	sv, err := m.Pop(1)
	if err != nil {
		return err
	}
	v, err := m.Pop(2)
	if err != nil {
		return err
	}
	if sv.Kind() != value.KindNum || sv.Rank() > 1 {
		return errors.TypeMismatch(errors.PhaseValidate, "Shape must be a list of numbers")
	}
	shape := make([]int, len(sv.Nums()))
	for i, f := range sv.Nums() {
		if f < 0 || f != float64(int(f)) {
			return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
				Value(f).
				Detail("Shape dimensions must be natural numbers, but one is %s", value.FormatNumber(f)).
				Build()
		}
		shape[i] = int(f)
	}
	r, err := v.Reshape(shape)
	if err != nil {
		return err
	}
	m.Push(r)
	return nil
}

type tokenKind uint8

const (
	tokWord tokenKind = iota
	tokNumber
	tokString
	tokVector
)

type token struct {
	text string
	nums []float64
	num  float64
	line int
	kind tokenKind
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	line := 1
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\n':
			line++
			i++
		case unicode.IsSpace(r):
			i++
		case r == '#':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				if rs[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(rs) {
				return nil, syntaxError(line, "unterminated string")
			}
			s, err := strconv.Unquote(string(rs[i : j+1]))
			if err != nil {
				return nil, syntaxError(line, fmt.Sprintf("invalid string %s", string(rs[i:j+1])))
			}
			toks = append(toks, token{kind: tokString, text: s, line: line})
			line += strings.Count(string(rs[i:j]), "\n")
			i = j + 1
		case r == '[':
			j := i + 1
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			if j >= len(rs) {
				return nil, syntaxError(line, "unterminated [")
			}
			fields := strings.Fields(string(rs[i+1 : j]))
			nums := make([]float64, len(fields))
			for k, f := range fields {
				n, err := parseNumber(f)
				if err != nil {
					return nil, syntaxError(line, fmt.Sprintf("invalid number %q", f))
				}
				nums[k] = n
			}
			toks = append(toks, token{kind: tokVector, nums: nums, line: line})
			i = j + 1
		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) && rs[j] != '"' && rs[j] != '[' && rs[j] != '#' {
				j++
			}
			word := string(rs[i:j])
			if n, err := parseNumber(word); err == nil {
				toks = append(toks, token{kind: tokNumber, num: n, text: word, line: line})
			} else {
				toks = append(toks, token{kind: tokWord, text: word, line: line})
			}
			i = j
		}
	}
	return toks, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" || !(s[0] == '-' || s[0] == '.' || (s[0] >= '0' && s[0] <= '9')) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

func syntaxError(line int, msg string) *errors.Error {
	return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
		Value(line).
		Detail("line %d: %s", line, msg).
		Build()
}
