// Package native implements capability.Backend on the local operating
// system.
//
// Console output goes to a buffered stdout that is flushed after every
// print, scan reads stdin line by line, and the file operations call the
// os package directly. Images are drawn into the terminal with coloured
// half-block characters; audio is decoded and played through oto, with
// each player retained until it finishes or the backend is closed.
//
//	b := native.New().WithArgs(flag.Args())
//	defer b.Close()
package native
