package store

import "errors"

// Sentinel errors returned by the stores. Callers should use [errors.Is] to
// match against these values.
var (
	// ErrBlobNotFound is returned by [BlobStore.Read] when no file exists for
	// the requested key.
	ErrBlobNotFound = errors.New("blob was not found")

	// ErrEmptyBlobKey is returned when a blob operation is given an empty key.
	ErrEmptyBlobKey = errors.New("blob key is empty")

	// ErrEmptyDomain is returned when a cache entry has no domain.
	ErrEmptyDomain = errors.New("cache entry domain is empty")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan cache entry row")
)
