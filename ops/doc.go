// Package ops is the catalogue of host operations and their dispatcher.
//
// Each operation has a fixed descriptor giving the number of values it pops
// and pushes:
//
//	show prin print                       1 -> 0
//	scan args rand now                    0 -> 1
//	var freadstr freadbytes flines        1 -> 1
//	fexists flistdir fisfile imread       1 -> 1
//	fwritestr fwritebytes imwrite         2 -> 0   (path, then contents)
//	import imshow audioplay               1 -> 0
//
// A Dispatcher pops arguments from an Evaluator, performs the effect
// through a capability.Backend and pushes the result. Every error returned
// by Run is an *errors.Error tagged with the operation name.
package ops
