// Package value defines the array values that cross the host effect
// boundary.
//
// A Value has a shape and a flat row-major buffer whose length is the
// product of the shape. Four element kinds exist:
//
//	KindNum   float64
//	KindByte  masked byte (concrete 0..255 or unset, unset reads as 0)
//	KindChar  rune, used for text
//	KindBox   nested Value, used for sequences of strings
//
// Values are immutable once built; constructors validate the shape and
// report a structural error instead of panicking.
package value
