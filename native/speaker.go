package native

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/wippyai/arrayio/codec"
	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/resource"
)

// playback is the part of an oto player the speaker drives.
type playback interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// output opens players on an audio device.
type output interface {
	NewPlayer(r io.Reader) playback
}

type openFunc func(ctx context.Context, sampleRate, channels int) (output, error)

// voice is a retained player. Dropping it stops playback.
type voice struct {
	p playback
}

func (v *voice) Drop() {
	v.p.Pause()
	_ = v.p.Close()
}

// The output device always runs at this layout; sounds are remixed to it.
const (
	outputRate     = codec.SampleRate
	outputChannels = 2
)

// Speaker plays WAV audio on the default output device. The device is
// opened once, on first use, as 44100 Hz stereo.
type Speaker struct {
	open    openFunc
	out     output
	players *resource.Table[*voice]
	mu      sync.Mutex
}

// NewSpeaker creates a speaker. No device is opened until PlayAudio.
func NewSpeaker() *Speaker {
	return newSpeaker(openOto)
}

func newSpeaker(open openFunc) *Speaker {
	players := resource.NewTable[*voice]()
	players.Subscribe(resource.ObserverFunc[*voice](func(e resource.Event[*voice]) {
		Logger().Debug("audio player", zap.Stringer("event", e.Type), zap.Uint32("handle", uint32(e.Handle)))
	}))
	return &Speaker{open: open, players: players}
}

// PlayAudio starts playing wav and returns without waiting for it to end.
func (s *Speaker) PlayAudio(ctx context.Context, wav []byte) error {
	audio, err := codec.DecodeWAV(wav)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()

	if s.out == nil {
		out, err := s.open(ctx, outputRate, outputChannels)
		if err != nil {
			return errors.Wrap(errors.PhaseHost, errors.KindIO, err, "Failed to open audio output")
		}
		s.out = out
	}

	p := s.out.NewPlayer(bytes.NewReader(pcm(audio)))
	p.Play()
	h := s.players.Insert(&voice{p: p})
	if h == 0 {
		_ = p.Close()
		return errors.Unsupported(errors.PhaseHost, "audio output is closed")
	}
	Logger().Debug("audio started",
		zap.Int("frames", audio.Frames()),
		zap.Int("channels", len(audio.Channels)),
		zap.Int("sample_rate", audio.SampleRate))
	return nil
}

// Playing returns the number of retained players.
func (s *Speaker) Playing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return s.players.Len()
}

// Close stops all playback.
func (s *Speaker) Close() error {
	return s.players.Close()
}

// prune drops players that have finished.
func (s *Speaker) prune() {
	s.players.Each(func(h resource.Handle, v *voice) bool {
		if !v.p.IsPlaying() {
			s.players.Remove(h)
		}
		return true
	})
}

// pcm converts audio to interleaved float32 little endian samples in the
// output layout.
func pcm(a *codec.Audio) []byte {
	samples := stereo(a).Interleaved()
	out := make([]byte, 0, len(samples)*4)
	for _, f := range samples {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

// stereo remixes a to two channels at outputRate. Mono is duplicated;
// with more channels, even-numbered channels are averaged into the left
// output and odd-numbered ones into the right. Other sample rates are
// resampled by nearest neighbour.
func stereo(a *codec.Audio) *codec.Audio {
	frames := a.Frames()
	if a.SampleRate > 0 && a.SampleRate != outputRate {
		frames = int(int64(frames) * outputRate / int64(a.SampleRate))
	}
	at := func(ch []float32, t int) float32 {
		if a.SampleRate > 0 && a.SampleRate != outputRate {
			t = int(int64(t) * int64(a.SampleRate) / outputRate)
		}
		return ch[t]
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	n := len(a.Channels)
	for t := 0; t < frames; t++ {
		if n == 1 {
			left[t] = at(a.Channels[0], t)
			right[t] = left[t]
			continue
		}
		var l, r float32
		var nl, nr int
		for c, ch := range a.Channels {
			if c%2 == 0 {
				l += at(ch, t)
				nl++
			} else {
				r += at(ch, t)
				nr++
			}
		}
		left[t], right[t] = l/float32(nl), r/float32(nr)
	}
	return &codec.Audio{Channels: [][]float32{left, right}, SampleRate: outputRate}
}

type otoOutput struct {
	ctx *oto.Context
}

func (o otoOutput) NewPlayer(r io.Reader) playback {
	return o.ctx.NewPlayer(r)
}

// pendingOutput is a device that was still starting when the caller gave
// up waiting. Players block until it is ready.
type pendingOutput struct {
	ready <-chan struct{}
	out   output
}

func (p pendingOutput) NewPlayer(r io.Reader) playback {
	<-p.ready
	return p.out.NewPlayer(r)
}

// awaitOutput waits for ready. A cancelled ctx does not discard the device,
// since oto cannot create a second context in the same process.
func awaitOutput(ctx context.Context, ready <-chan struct{}, out output) output {
	select {
	case <-ready:
		return out
	case <-ctx.Done():
		Logger().Debug("audio output not ready", zap.Error(ctx.Err()))
		return pendingOutput{ready: ready, out: out}
	}
}

func openOto(ctx context.Context, sampleRate, channels int) (output, error) {
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	return awaitOutput(ctx, ready, otoOutput{ctx: c}), nil
}
