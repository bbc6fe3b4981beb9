package cache

import "time"

const (
	KeyRouteDBRaw  = "routedb:raw"
	KeyRouteDBMeta = "routedb:meta"
)

// RouteDBMeta describes the raw route database currently held in the cache.
type RouteDBMeta struct {
	Fingerprint string    `json:"fingerprint"`
	SizeBytes   int       `json:"sizeBytes"`
	FetchedAt   time.Time `json:"fetchedAt"`
}
