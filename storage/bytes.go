package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/kbukum/liquidkit/errors"
)

// ReadAll downloads the object at path into memory.
func ReadAll(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Storage("read", path, err)
	}
	return data, nil
}

// WriteBytes uploads data to path, replacing any existing object.
func WriteBytes(ctx context.Context, s Storage, path string, data []byte) error {
	return s.Upload(ctx, path, bytes.NewReader(data))
}
