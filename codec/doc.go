// Package codec converts array values to and from media bytes.
//
// Images:
//
//	rank 2 [h, w]       grayscale
//	rank 3 [h, w, 1]    grayscale
//	rank 3 [h, w, 2]    gray + alpha
//	rank 3 [h, w, 3]    RGB
//	rank 3 [h, w, 4]    RGBA
//
// Numbers in [0, 1] map to floor(f*255); values outside that range
// saturate. Byte elements are treated as masks: any non-zero byte is fully
// on. Decoding always yields a byte array shaped [h, w, 4].
//
// Audio:
//
//	rank 1 [samples]            mono
//	rank 2 [channels, samples]  one row per channel
//
// EncodeWAV writes 44100 Hz 32-bit float WAV data with samples interleaved
// by time step. DecodeWAV reads float and integer PCM back into
// channel-major form.
//
// Every function here is pure; nothing touches the host.
package codec
