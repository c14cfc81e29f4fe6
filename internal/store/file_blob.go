// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MKhiriev/tally-sync/internal/logger"
)

const blobExt = ".blob"

// fileBlobStore is the filesystem implementation of [BlobStore]. Every key
// maps to <dir>/<hex sha256 of key>.blob, so arbitrary keys never escape
// the directory. Writes go through a temp file and a rename, so readers
// either see the previous file or the complete new one.
type fileBlobStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileBlobStore constructs a [BlobStore] rooted at dir, creating it if
// needed.
func NewFileBlobStore(dir string, logger *logger.Logger) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &fileBlobStore{dir: dir, logger: logger}, nil
}

func (s *fileBlobStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+blobExt)
}

// Read returns the blob for key or [ErrBlobNotFound].
func (s *fileBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyBlobKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Write stores data under key, replacing any previous blob.
func (s *fileBlobStore) Write(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrEmptyBlobKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp blob: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp blob: %w", err)
	}

	if err = os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

// Delete removes the blob for key. A missing blob is not an error.
func (s *fileBlobStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyBlobKey
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Clear removes every blob (and leftover temp file) but keeps the directory.
func (s *fileBlobStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list blob dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, blobExt) || strings.HasPrefix(name, "tmp-")) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Error().Int("failed", len(errs)).Str("func", "*fileBlobStore.Clear").Msg("some blobs could not be removed")
		return fmt.Errorf("clear blobs: %w", errors.Join(errs...))
	}
	return nil
}
