package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/logger"
)

// ClientStorages groups the local persistence backends of a session into a
// single value that can be passed to the service layer.
type ClientStorages struct {
	// CacheEntries is the sqlite-backed store of per-domain payloads. The
	// analytics cache uses it as well.
	CacheEntries CacheEntryRepository

	// Images is the file store of downloaded verification images.
	Images BlobStore

	db *DB
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Opens the image blob directory cfg.Files.ImageDir.
//
// Returns an error if the database connection cannot be established, if
// migration fails or if the blob directory cannot be created.
func NewClientStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	images, err := NewFileBlobStore(cfg.Files.ImageDir, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("image store error: %w", err)
	}

	return &ClientStorages{
		CacheEntries: NewCacheEntryRepository(db, logger),
		Images:       images,
		db:           db,
	}, nil
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
