// Package arrayio is the host-effect boundary of an array-language runtime.
//
// Every operation that leaves the pure array world (printing, randomness,
// files, environment, time, images, audio, imports) is routed through a
// single capability interface, so the same program runs natively, inside
// a deterministic sandbox, or embedded in a WebAssembly host.
//
// # Architecture Overview
//
//	arrayio/
//	├── value/        Array values, shapes and text rendering
//	├── codec/        Image and WAV conversion between arrays and bytes
//	├── capability/   Backend interfaces, capability sets, Unsupported defaults
//	├── native/       Operating-system backend (terminal, files, speaker)
//	├── sandbox/      In-memory deterministic backend for tests and embedding
//	├── ops/          Operation catalogue and the dispatcher
//	├── machine/      A small stack evaluator driving the dispatcher
//	├── wasmhost/     wazero host module exposing the machine to guests
//	├── resource/     Generic handle table with lifecycle events
//	├── config/       TOML configuration
//	├── errors/       Structured errors with phase and kind
//	└── cmd/arrayio/  Command line runner and interactive REPL
//
// # Quick Start
//
//	d := ops.New(native.New())
//	m := machine.New(d)
//	if err := m.Exec(ctx, `"hello" print`); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests and embedders usually want the sandbox instead:
//
//	sb := sandbox.New().WithFiles(map[string][]byte{"in.txt": []byte("hi")})
//	m := machine.New(ops.New(sb))
//	_ = m.Exec(ctx, `"in.txt" freadstr print`)
//	fmt.Print(string(sb.Stdout()))
//
// # Capabilities
//
// A Backend always provides console output, randomness and a clock. The
// optional capabilities (display, audio, input, environment, filesystem)
// can be switched off with capability.Mask; masked operations fail with a
// fixed "not supported in this environment" message.
package arrayio
