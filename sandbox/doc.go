// Package sandbox provides an in-memory capability.Backend.
//
// It suits hosts with no operating system underneath, such as a browser or
// a WebAssembly guest, and tests. Output is captured, input is scripted,
// rand is seeded and the clock is fixed, so runs are reproducible:
//
//	sb := sandbox.New().
//		WithFiles(map[string][]byte{"data/in.txt": []byte("a\nb\n")}).
//		WithStdin([]byte("yes\n"))
//	...
//	fmt.Print(string(sb.Stdout()))
//
// Files live in a flat map keyed by cleaned slash paths. Directories are
// implied by the files beneath them and cannot be empty.
package sandbox
