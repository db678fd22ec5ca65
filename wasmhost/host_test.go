package wasmhost

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/arrayio/machine"
	"github.com/wippyai/arrayio/ops"
	"github.com/wippyai/arrayio/sandbox"
	"github.com/wippyai/arrayio/value"
)

type fakeMemory struct {
	buf []byte
}

func (m *fakeMemory) Read(offset, n uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(n)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset:end], true
}

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

func newHost() (*Host, *sandbox.Sandbox) {
	sb := sandbox.New()
	return New(machine.New(ops.New(sb))), sb
}

func instantiate(t *testing.T, h *Host) api.Module {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := h.Instantiate(ctx, rt)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	return mod
}

func call(t *testing.T, mod api.Module, name string, params ...uint64) []uint64 {
	t.Helper()
	fn := mod.ExportedFunction(name)
	if fn == nil {
		t.Fatalf("%s not exported", name)
	}
	res, err := fn.Call(context.Background(), params...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func TestHost_Exports(t *testing.T) {
	h, _ := newHost()
	mod := instantiate(t, h)
	if mod.Name() != ModuleName {
		t.Errorf("module name = %q", mod.Name())
	}
	for _, f := range h.funcs() {
		if mod.ExportedFunction(f.name) == nil {
			t.Errorf("%s not exported", f.name)
		}
	}
}

func TestHost_Numbers(t *testing.T) {
	h, _ := newHost()
	mod := instantiate(t, h)

	call(t, mod, "push_num", api.EncodeF64(2.5))
	call(t, mod, "push_num", api.EncodeF64(-1))
	if got := call(t, mod, "depth")[0]; got != 2 {
		t.Fatalf("depth = %d", got)
	}
	if got := api.DecodeF64(call(t, mod, "pop_num")[0]); got != -1 {
		t.Errorf("pop_num = %v", got)
	}
	if got := api.DecodeF64(call(t, mod, "pop_num")[0]); got != 2.5 {
		t.Errorf("pop_num = %v", got)
	}

	if got := api.DecodeF64(call(t, mod, "pop_num")[0]); !math.IsNaN(got) {
		t.Errorf("pop_num on empty stack = %v, want NaN", got)
	}
	if call(t, mod, "error_len")[0] == 0 {
		t.Error("error_len should report the underflow")
	}
	if !strings.Contains(h.LastError(), "stack was empty") {
		t.Errorf("LastError = %q", h.LastError())
	}
}

func TestHost_CallID(t *testing.T) {
	h, sb := newHost()
	mod := instantiate(t, h)

	if got := call(t, mod, "call_id", uint64(ops.Rand))[0]; got != uint64(StatusOK) {
		t.Fatalf("call_id(rand) = %d: %s", got, h.LastError())
	}
	if got := call(t, mod, "depth")[0]; got != 1 {
		t.Errorf("depth after rand = %d", got)
	}

	call(t, mod, "push_num", api.EncodeF64(7))
	if got := call(t, mod, "call_id", uint64(ops.Print))[0]; got != uint64(StatusOK) {
		t.Fatalf("call_id(print) = %d: %s", got, h.LastError())
	}
	if string(sb.Stdout()) != "7\n" {
		t.Errorf("stdout = %q", sb.Stdout())
	}

	if got := call(t, mod, "call_id", 200)[0]; got != uint64(StatusFailed) {
		t.Errorf("call_id(200) = %d", got)
	}
	if got := call(t, mod, "call_id", 1<<20)[0]; got != uint64(StatusFailed) {
		t.Errorf("call_id(1<<20) = %d", got)
	}
}

func TestHost_NoGuestMemory(t *testing.T) {
	h, _ := newHost()
	mod := instantiate(t, h)

	if got := call(t, mod, "push_str", 0, 4)[0]; got != uint64(StatusFailed) {
		t.Fatalf("push_str without memory = %d", got)
	}
	if !strings.Contains(h.LastError(), "exports no memory") {
		t.Errorf("LastError = %q", h.LastError())
	}
	if got := call(t, mod, "error_read", 0, 16)[0]; got != 0 {
		t.Errorf("error_read without memory = %d", got)
	}
}

func TestHost_CallNamed(t *testing.T) {
	h, sb := newHost()
	ctx := context.Background()
	mem := &fakeMemory{buf: make([]byte, 64)}
	copy(mem.buf, "printnope")

	h.machine.Push(value.Number(3))
	if got := h.callNamed(ctx, mem, 0, 5); got != StatusOK {
		t.Fatalf("call(print) = %d: %s", got, h.LastError())
	}
	if string(sb.Stdout()) != "3\n" {
		t.Errorf("stdout = %q", sb.Stdout())
	}

	if got := h.callNamed(ctx, mem, 5, 4); got != StatusFailed {
		t.Errorf("call(nope) = %d", got)
	}
	if !strings.Contains(h.LastError(), `"nope" not found`) {
		t.Errorf("LastError = %q", h.LastError())
	}

	if got := h.callNamed(ctx, mem, 60, 10); got != StatusFailed {
		t.Errorf("out of bounds call = %d", got)
	}
	if !strings.Contains(h.LastError(), "out of bounds") {
		t.Errorf("LastError = %q", h.LastError())
	}
}

func TestWriteError(t *testing.T) {
	mem := &fakeMemory{buf: make([]byte, 8)}
	if n := writeError(mem, "abcdef", 0, 4); n != 4 || string(mem.buf[:4]) != "abcd" {
		t.Errorf("writeError = %d, %q", n, mem.buf[:4])
	}
	if n := writeError(mem, "abcdef", 6, 6); n != 0 {
		t.Errorf("out of bounds writeError = %d", n)
	}
	if n := writeError(nil, "x", 0, 1); n != 0 {
		t.Errorf("nil memory writeError = %d", n)
	}
}

func TestHost_RunByName(t *testing.T) {
	h, sb := newHost()
	ctx := context.Background()
	if err := h.machine.Exec(ctx, `"hi"`); err != nil {
		t.Fatal(err)
	}
	if err := h.Run(ctx, "print"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(sb.Stdout()) != "hi\n" {
		t.Errorf("stdout = %q", sb.Stdout())
	}
	if err := h.Run(ctx, "explode"); err == nil {
		t.Error("unknown op should fail")
	}
}
