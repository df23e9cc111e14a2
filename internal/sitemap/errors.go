package sitemap

import "errors"

var (
	// ErrCreateDirectory is returned when the output directory cannot be created.
	ErrCreateDirectory = errors.New("create output directory")
	// ErrWriteFile is returned when a sitemap file cannot be opened, written or closed.
	ErrWriteFile = errors.New("write sitemap file")
	// ErrInvalidShardCount is returned for a negative shard count.
	ErrInvalidShardCount = errors.New("shard count must not be negative")
)
