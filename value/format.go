package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// String renders v the way print and prin write it: text as raw text,
// scalars as bare numbers, everything else bracketed.
func (v Value) String() string {
	if v.kind == KindChar {
		if v.Rank() <= 1 {
			return string(v.chars)
		}
		rows := make([]string, 0, v.shape[0])
		for _, row := range v.rows() {
			rows = append(rows, row.String())
		}
		return strings.Join(rows, "\n")
	}
	if v.Rank() == 0 {
		return v.elem(0, false)
	}
	return v.flat(false)
}

// Grid renders v the way show writes it. Rank 0 and rank 1 values stay on
// one line; higher ranks are drawn as bordered grids, one per trailing
// matrix.
func (v Value) Grid() string {
	switch v.Rank() {
	case 0:
		return v.elem(0, true)
	case 1:
		if v.kind == KindChar {
			return strconv.Quote(string(v.chars))
		}
		return v.flat(true)
	case 2:
		return v.matrix()
	}
	parts := make([]string, 0, v.shape[0])
	for _, row := range v.rows() {
		parts = append(parts, row.Grid())
	}
	return strings.Join(parts, "\n")
}

// rows splits v along its first axis.
func (v Value) rows() []Value {
	if v.Rank() == 0 {
		return []Value{v}
	}
	n := v.RowLen()
	sub := v.shape[1:]
	out := make([]Value, v.shape[0])
	for i := range out {
		lo, hi := i*n, (i+1)*n
		r := Value{kind: v.kind, shape: append([]int(nil), sub...)}
		switch v.kind {
		case KindNum:
			r.nums = v.nums[lo:hi]
		case KindByte:
			r.bytes = v.bytes[lo:hi]
		case KindChar:
			r.chars = v.chars[lo:hi]
		case KindBox:
			r.boxes = v.boxes[lo:hi]
		}
		out[i] = r
	}
	return out
}

func (v Value) flat(quoted bool) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.elem(i, quoted))
	}
	b.WriteByte(']')
	return b.String()
}

func (v Value) matrix() string {
	if v.kind == KindChar {
		t := table.New().Border(lipgloss.RoundedBorder())
		for _, row := range v.rows() {
			t.Row(strconv.Quote(string(row.chars)))
		}
		return t.String()
	}

	right := lipgloss.NewStyle().Align(lipgloss.Right)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderColumn(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return right })

	cols := v.shape[1]
	for r := 0; r < v.shape[0]; r++ {
		cells := make([]string, cols)
		for c := 0; c < cols; c++ {
			s := v.elem(r*cols+c, true)
			if c > 0 {
				s = " " + s
			}
			cells[c] = s
		}
		t.Row(cells...)
	}
	return t.String()
}

func (v Value) elem(i int, quoted bool) string {
	switch v.kind {
	case KindNum:
		return FormatNumber(v.nums[i])
	case KindByte:
		b := v.bytes[i]
		if !b.IsSet() {
			return "_"
		}
		return strconv.Itoa(int(b.v))
	case KindChar:
		if quoted {
			return strconv.QuoteRune(v.chars[i])
		}
		return string(v.chars[i])
	default:
		return v.boxes[i].Grid()
	}
}

// FormatNumber renders a float the way the runtime displays numbers:
// integral values without a fraction, infinities as ∞.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
