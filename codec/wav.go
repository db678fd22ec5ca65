package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/value"
)

// SampleRate is the rate of every encoded WAV.
const SampleRate = 44100

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
	bitsPerSample       = 32
)

// Audio is decoded PCM with channel-major samples.
type Audio struct {
	Channels   [][]float32
	SampleRate int
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Interleaved returns one sample per channel per time step.
func (a *Audio) Interleaved() []float32 {
	n := a.Frames()
	out := make([]float32, 0, n*len(a.Channels))
	for t := 0; t < n; t++ {
		for _, ch := range a.Channels {
			out = append(out, ch[t])
		}
	}
	return out
}

// EncodeWAV converts a rank 1 (mono) or rank 2 ([channels, samples]) array
// into a 44100 Hz, 32-bit float WAV file with interleaved samples.
func EncodeWAV(v value.Value) ([]byte, error) {
	var samples []float32
	switch v.Kind() {
	case value.KindNum:
		nums := v.Nums()
		samples = make([]float32, len(nums))
		for i, f := range nums {
			samples[i] = float32(f)
		}
	case value.KindByte:
		bs := v.Bytes()
		samples = make([]float32, len(bs))
		for i, b := range bs {
			samples[i] = float32(b.Or(0))
		}
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, "Audio must be a numeric array")
	}

	var channels [][]float32
	switch rank := v.Rank(); rank {
	case 1:
		channels = [][]float32{samples}
	case 2:
		count, length := v.Shape()[0], v.RowLen()
		channels = make([][]float32, count)
		for c := range channels {
			channels[c] = samples[c*length : (c+1)*length]
		}
	default:
		return nil, errors.RankMismatch(errors.PhaseEncode, rank,
			fmt.Sprintf("Audio must be a rank 1 or 2 numeric array, but it is rank %d", rank))
	}

	if len(channels) == 0 || len(channels) > math.MaxUint16 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Value(len(channels)).
			Detail("Audio must have between 1 and %d channels, but it has %d", math.MaxUint16, len(channels)).
			Build()
	}

	return writeWAV((&Audio{Channels: channels, SampleRate: SampleRate}).Interleaved(), len(channels)), nil
}

func writeWAV(interleaved []float32, channels int) []byte {
	const bytesPerSample = bitsPerSample / 8
	dataLen := len(interleaved) * bytesPerSample
	frames := len(interleaved) / channels

	out := make([]byte, 0, 58+dataLen)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4+(8+18)+(8+4)+(8+dataLen)))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 18)
	out = binary.LittleEndian.AppendUint16(out, wavFormatFloat)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, SampleRate)
	out = binary.LittleEndian.AppendUint32(out, uint32(SampleRate*channels*bytesPerSample))
	out = binary.LittleEndian.AppendUint16(out, uint16(channels*bytesPerSample))
	out = binary.LittleEndian.AppendUint16(out, bitsPerSample)
	out = binary.LittleEndian.AppendUint16(out, 0)

	out = append(out, "fact"...)
	out = binary.LittleEndian.AppendUint32(out, 4)
	out = binary.LittleEndian.AppendUint32(out, uint32(frames))

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataLen))
	for _, s := range interleaved {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(s))
	}
	return out
}

type wavFormat struct {
	tag        uint16
	channels   int
	sampleRate int
	bits       int
}

// DecodeWAV parses a RIFF/WAVE file holding 32-bit float or 8/16/32-bit
// integer PCM and returns channel-major samples.
func DecodeWAV(data []byte) (*Audio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: not a RIFF/WAVE file")
	}

	var (
		format  *wavFormat
		payload []byte
	)
	rest := data[12:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			size = len(rest)
		}
		body := rest[:size]

		switch id {
		case "fmt ":
			f, err := parseFormat(body)
			if err != nil {
				return nil, err
			}
			format = f
		case "data":
			payload = body
		}

		if size%2 == 1 && size < len(rest) {
			size++
		}
		rest = rest[size:]
	}

	if format == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: missing fmt chunk")
	}
	if payload == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: missing data chunk")
	}

	read, err := sampleReader(format)
	if err != nil {
		return nil, err
	}

	width := format.bits / 8
	frames := len(payload) / (width * format.channels)
	channels := make([][]float32, format.channels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for t := 0; t < frames; t++ {
		for c := range channels {
			off := (t*format.channels + c) * width
			channels[c][t] = read(payload[off : off+width])
		}
	}

	return &Audio{Channels: channels, SampleRate: format.sampleRate}, nil
}

func parseFormat(body []byte) (*wavFormat, error) {
	if len(body) < 16 {
		return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: fmt chunk too short")
	}
	f := &wavFormat{
		tag:        binary.LittleEndian.Uint16(body[0:2]),
		channels:   int(binary.LittleEndian.Uint16(body[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
		bits:       int(binary.LittleEndian.Uint16(body[14:16])),
	}
	if f.tag == wavFormatExtensible {
		if len(body) < 26 {
			return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: extensible fmt chunk too short")
		}
		f.tag = binary.LittleEndian.Uint16(body[24:26])
	}
	if f.channels == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, "Failed to decode audio: zero channels")
	}
	return f, nil
}

func sampleReader(f *wavFormat) (func([]byte) float32, error) {
	switch {
	case f.tag == wavFormatFloat && f.bits == 32:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}, nil
	case f.tag == wavFormatPCM && f.bits == 8:
		return func(b []byte) float32 {
			return (float32(b[0]) - 128) / 128
		}, nil
	case f.tag == wavFormatPCM && f.bits == 16:
		return func(b []byte) float32 {
			return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
		}, nil
	case f.tag == wavFormatPCM && f.bits == 32:
		return func(b []byte) float32 {
			return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648)
		}, nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
		Value(f.tag).
		Detail("Failed to decode audio: unsupported sample format %d with %d bits", f.tag, f.bits).
		Build()
}
