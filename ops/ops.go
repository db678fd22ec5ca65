package ops

import (
	"fmt"
)

// Op identifies one entry of the operation catalogue.
type Op uint8

const (
	Show Op = iota
	Prin
	Print
	Scan
	Args
	Var
	Rand
	FReadStr
	FWriteStr
	FReadBytes
	FWriteBytes
	FLines
	FExists
	FListDir
	FIsFile
	Import
	Now
	ImRead
	ImWrite
	ImShow
	AudioPlay

	numOps
)

// Descriptor records how many values an operation pops and pushes.
type Descriptor struct {
	Name    string
	Args    uint8
	Outputs uint8
}

var descriptors = [numOps]Descriptor{
	Show:        {"show", 1, 0},
	Prin:        {"prin", 1, 0},
	Print:       {"print", 1, 0},
	Scan:        {"scan", 0, 1},
	Args:        {"args", 0, 1},
	Var:         {"var", 1, 1},
	Rand:        {"rand", 0, 1},
	FReadStr:    {"freadstr", 1, 1},
	FWriteStr:   {"fwritestr", 2, 0},
	FReadBytes:  {"freadbytes", 1, 1},
	FWriteBytes: {"fwritebytes", 2, 0},
	FLines:      {"flines", 1, 1},
	FExists:     {"fexists", 1, 1},
	FListDir:    {"flistdir", 1, 1},
	FIsFile:     {"fisfile", 1, 1},
	Import:      {"import", 1, 0},
	Now:         {"now", 0, 1},
	ImRead:      {"imread", 1, 1},
	ImWrite:     {"imwrite", 2, 0},
	ImShow:      {"imshow", 1, 0},
	AudioPlay:   {"audioplay", 1, 0},
}

var byName = func() map[string]Op {
	m := make(map[string]Op, numOps)
	for i, d := range descriptors {
		m[d.Name] = Op(i)
	}
	return m
}()

// Lookup finds an operation by name.
func Lookup(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

// All returns every operation in catalogue order.
func All() []Op {
	out := make([]Op, numOps)
	for i := range out {
		out[i] = Op(i)
	}
	return out
}

// Valid reports whether op is in the catalogue.
func (op Op) Valid() bool { return op < numOps }

// Descriptor returns the operation's descriptor. It panics on an invalid Op.
func (op Op) Descriptor() Descriptor {
	if !op.Valid() {
		panic(fmt.Sprintf("ops: invalid op %d", op))
	}
	return descriptors[op]
}

func (op Op) Name() string { return op.Descriptor().Name }
func (op Op) Args() int { return int(op.Descriptor().Args) }
func (op Op) Outputs() int { return int(op.Descriptor().Outputs) }

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("op(%d)", uint8(op))
	}
	return descriptors[op].Name
}
