package capability

import (
	"context"
	"image"
	"time"

	"github.com/wippyai/arrayio/errors"
)

// Messages returned by Unsupported.
const (
	MsgShowImage = "Showing images not supported in this environment"
	MsgPlayAudio = "Playing audio not supported in this environment"
	MsgScanLine  = "Reading input not supported in this environment"
	MsgVar       = "Environment variables not supported in this environment"
	MsgArgs      = "Process arguments not supported in this environment"
	MsgFileIO    = "File IO not supported in this environment"
)

// Unsupported implements every optional capability by failing with a fixed
// message. Embed it, or use Adapt, to build partial backends. FileExists
// reports false and Now reads the wall clock, since neither may fail.
type Unsupported struct{}

func (Unsupported) Now(_ context.Context) time.Time {
	return time.Now()
}

func (Unsupported) ShowImage(_ context.Context, _ image.Image) error {
	return errors.Unsupported(errors.PhaseHost, MsgShowImage)
}

func (Unsupported) PlayAudio(_ context.Context, _ []byte) error {
	return errors.Unsupported(errors.PhaseHost, MsgPlayAudio)
}

func (Unsupported) ScanLine(_ context.Context) (string, error) {
	return "", errors.Unsupported(errors.PhaseHost, MsgScanLine)
}

func (Unsupported) Var(_ context.Context, _ string) (string, error) {
	return "", errors.Unsupported(errors.PhaseHost, MsgVar)
}

func (Unsupported) Args(_ context.Context) ([]string, error) {
	return nil, errors.Unsupported(errors.PhaseHost, MsgArgs)
}

func (Unsupported) FileExists(_ context.Context, _ string) bool {
	return false
}

func (Unsupported) ListDir(_ context.Context, _ string) ([]string, error) {
	return nil, errors.Unsupported(errors.PhaseHost, MsgFileIO)
}

func (Unsupported) IsFile(_ context.Context, _ string) (bool, error) {
	return false, errors.Unsupported(errors.PhaseHost, MsgFileIO)
}

func (Unsupported) ReadFile(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.Unsupported(errors.PhaseHost, MsgFileIO)
}

func (Unsupported) WriteFile(_ context.Context, _ string, _ []byte) error {
	return errors.Unsupported(errors.PhaseHost, MsgFileIO)
}
