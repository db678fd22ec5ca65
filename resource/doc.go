// Package resource provides handle tables for long-lived host values.
//
// The native backend keeps audio players alive after the operation that
// started them has returned. Each player is parked in a Table until it
// finishes or the backend is closed:
//
//	players := resource.NewTable[*player]()
//	h := players.Insert(p)
//	...
//	players.Remove(h) // calls p.Drop() if it implements Dropper
//
// Handle 0 is never issued. Freed handles are reused. Observers see every
// insert and removal, which the backend uses for debug logging.
package resource
