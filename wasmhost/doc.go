// Package wasmhost lets WebAssembly guests drive the operation catalogue.
//
// Instantiate registers a wazero host module named "arrayio":
//
//	push_num(f64)
//	pop_num() -> f64              NaN on failure
//	push_str(ptr, len i32) -> i32
//	depth() -> i32
//	call(ptr, len i32) -> i32     operation by name
//	call_id(id i32) -> i32        operation by catalogue position
//	exec(ptr, len i32) -> i32     run machine source
//	error_len() -> i32
//	error_read(ptr, cap i32) -> i32
//
// Calls returning i32 status yield 0 on success and 1 on failure; the
// failure message stays readable through error_len and error_read until
// the next call. Strings are read from the calling module's exported
// memory.
package wasmhost
