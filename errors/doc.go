// Package errors provides structured error types for arrayio.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the operation name, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindChannelCount).
//		Op("imwrite").
//		Value(5).
//		Detail("channel count is %d", 5).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ChannelCount(errors.PhaseEncode, 5)
//	err := errors.IO("read file", osErr)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
