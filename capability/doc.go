// Package capability defines the host effects an array program can reach.
//
// Each effect is its own small interface. A Backend is the union of all of
// them; hosts that lack a facility either embed Unsupported or hand a
// partial implementation to Adapt, which fills the gaps:
//
//	b, err := capability.Adapt(myConsoleAndRNG)
//	b = capability.Mask(b, capability.CapFilesystem)
//
// Unsupported never panics. Failing capabilities return an error whose
// detail is a fixed, user-facing message; FileExists reports false and Now
// reads the wall clock.
package capability
