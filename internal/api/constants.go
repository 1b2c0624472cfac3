package api

// Cache-Control header values.
const (
	// CacheOneDayPrivate is used for per-user content like avatars.
	CacheOneDayPrivate = "private, max-age=86400"
)
