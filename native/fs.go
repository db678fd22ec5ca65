package native

import (
	"context"
	"os"
	"path/filepath"

	"github.com/wippyai/arrayio/errors"
)

func (b *Backend) FileExists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListDir returns the entries of path joined onto it, sorted by name.
func (b *Backend) ListDir(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, mapOSError("Failed to read directory", path, err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.Join(path, e.Name())
	}
	return out, nil
}

func (b *Backend) IsFile(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, mapOSError("Failed to read file metadata", path, err)
	}
	return info.Mode().IsRegular(), nil
}

func (b *Backend) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapOSError("Failed to read file", path, err)
	}
	return data, nil
}

func (b *Backend) WriteFile(_ context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // user-chosen output file
		return mapOSError("Failed to write file", path, err)
	}
	return nil
}

func mapOSError(action, path string, err error) *errors.Error {
	kind := errors.KindIO
	if os.IsNotExist(err) {
		kind = errors.KindNotFound
	}
	return errors.New(errors.PhaseHost, kind).
		Value(path).
		Cause(err).
		Detail("%s %s", action, path).
		Build()
}
