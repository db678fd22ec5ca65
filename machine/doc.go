// Package machine is a minimal evaluator for driving the operation
// catalogue from text.
//
// Source is a sequence of whitespace-separated tokens run left to right:
//
//	3.5 -1          numbers push numeric scalars
//	"a\tb"          Go-quoted strings push text
//	[1 2 3]         brackets push a numeric vector
//	# comment       runs to the end of the line
//	dup drop swap   stack words
//	reshape         pops a shape vector, then a value
//	print imwrite   any catalogue operation
//
// Operations pop their first argument from the top of the stack, so a write
// takes its contents first and its path last:
//
//	"hello" "greeting.txt" fwritestr
//
// import runs the imported file on the same machine.
package machine
