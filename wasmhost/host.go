package wasmhost

import (
	"context"
	"math"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/machine"
	"github.com/wippyai/arrayio/ops"
	"github.com/wippyai/arrayio/value"
)

// ModuleName is the import module guests link against.
const ModuleName = "arrayio"

// Call status codes.
const (
	StatusOK     uint32 = 0
	StatusFailed uint32 = 1
)

const (
	i32 = api.ValueTypeI32
	f64 = api.ValueTypeF64
)

// memory is the part of a guest's linear memory the host touches.
type memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// Host exposes a machine to WebAssembly guests. Guests push values, call
// operations by name or id, and read back the last error message.
type Host struct {
	machine *machine.Machine
	logger  *zap.Logger
	lastErr string
	mu      sync.Mutex
}

// New creates a host driving m.
func New(m *machine.Machine) *Host {
	return &Host{machine: m, logger: zap.NewNop()}
}

// WithLogger sets the logger used for failed guest calls
func (h *Host) WithLogger(l *zap.Logger) *Host {
	h.logger = l
	return h
}

// Machine returns the machine guests operate on.
func (h *Host) Machine() *machine.Machine {
	return h.machine
}

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (h *Host) funcs() []hostFunc {
	return []hostFunc{
		{name: "push_num", fn: h.pushNum, params: []api.ValueType{f64}},
		{name: "pop_num", fn: h.popNum, results: []api.ValueType{f64}},
		{name: "push_str", fn: h.pushStr, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "depth", fn: h.depth, results: []api.ValueType{i32}},
		{name: "call", fn: h.call, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "call_id", fn: h.callID, params: []api.ValueType{i32}, results: []api.ValueType{i32}},
		{name: "exec", fn: h.exec, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
		{name: "error_len", fn: h.errorLen, results: []api.ValueType{i32}},
		{name: "error_read", fn: h.errorRead, params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}},
	}
}

// Instantiate registers the host module in rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(ModuleName)
	for _, f := range h.funcs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "failed to instantiate host module "+ModuleName)
	}
	return mod, nil
}

// LastError returns the message of the most recent failure, or "".
func (h *Host) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *Host) status(name string, err error) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.lastErr = ""
		return StatusOK
	}
	h.lastErr = err.Error()
	h.logger.Debug("guest call failed", zap.String("func", name), zap.Error(err))
	return StatusFailed
}

func (h *Host) pushNum(_ context.Context, _ api.Module, stack []uint64) {
	h.machine.Push(value.Number(api.DecodeF64(stack[0])))
}

func (h *Host) popNum(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeF64(h.PopNumber())
}

// PopNumber pops a numeric scalar. On failure it records the error and
// returns NaN.
func (h *Host) PopNumber() float64 {
	v, err := h.machine.Pop(1)
	if err != nil {
		h.status("pop_num", err)
		return math.NaN()
	}
	n, ok := v.AsNumber()
	if !ok {
		h.status("pop_num", errors.TypeMismatch(errors.PhaseValidate, "Value must be a number"))
		return math.NaN()
	}
	h.status("pop_num", nil)
	return n
}

func (h *Host) pushStr(_ context.Context, mod api.Module, stack []uint64) {
	s, err := readString(mod.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	if err == nil {
		h.machine.Push(value.Str(s))
	}
	stack[0] = api.EncodeU32(h.status("push_str", err))
}

func (h *Host) depth(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeU32(uint32(h.machine.StackSize()))
}

func (h *Host) call(ctx context.Context, mod api.Module, stack []uint64) {
	stack[0] = api.EncodeU32(h.callNamed(ctx, mod.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func (h *Host) callNamed(ctx context.Context, mem memory, ptr, n uint32) uint32 {
	name, err := readString(mem, ptr, n)
	if err != nil {
		return h.status("call", err)
	}
	return h.status("call", h.Run(ctx, name))
}

// Run runs a catalogue operation by name on the machine.
func (h *Host) Run(ctx context.Context, name string) error {
	op, ok := ops.Lookup(name)
	if !ok {
		return errors.NotFound(errors.PhaseDispatch, "operation", name)
	}
	return h.RunID(ctx, op)
}

// RunID runs a catalogue operation by id on the machine.
func (h *Host) RunID(ctx context.Context, op ops.Op) error {
	return h.machine.Run(ctx, op)
}

func (h *Host) callID(ctx context.Context, _ api.Module, stack []uint64) {
	id := api.DecodeU32(stack[0])
	var err error
	if id > math.MaxUint8 || !ops.Op(id).Valid() {
		err = errors.New(errors.PhaseDispatch, errors.KindNotFound).
			Value(id).
			Detail("operation id %d not found", id).
			Build()
	} else {
		err = h.RunID(ctx, ops.Op(id))
	}
	stack[0] = api.EncodeU32(h.status("call_id", err))
}

func (h *Host) exec(ctx context.Context, mod api.Module, stack []uint64) {
	src, err := readString(mod.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	if err == nil {
		err = h.machine.Exec(ctx, src)
	}
	stack[0] = api.EncodeU32(h.status("exec", err))
}

func (h *Host) errorLen(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeU32(uint32(len(h.LastError())))
}

func (h *Host) errorRead(_ context.Context, mod api.Module, stack []uint64) {
	stack[0] = api.EncodeU32(writeError(mod.Memory(), h.LastError(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

// writeError copies up to limit bytes of msg to ptr and returns the count
// written, or 0 when memory is unavailable.
func writeError(mem memory, msg string, ptr, limit uint32) uint32 {
	if mem == nil {
		return 0
	}
	b := []byte(msg)
	if uint32(len(b)) > limit {
		b = b[:limit]
	}
	if !mem.Write(ptr, b) {
		return 0
	}
	return uint32(len(b))
}

func readString(mem memory, ptr, n uint32) (string, error) {
	if mem == nil {
		return "", errors.Unsupported(errors.PhaseHost, "guest module exports no memory")
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		return "", errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Value(ptr).
			Detail("memory range [%d, %d) out of bounds", ptr, uint64(ptr)+uint64(n)).
			Build()
	}
	return string(b), nil
}
