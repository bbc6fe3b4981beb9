package routedb

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// snapshotFormat changes whenever ParseResult or its nested domain types change
// shape. Snapshots written under another format are treated as misses.
const snapshotFormat = 2

const (
	snapshotPrefix = "routedb-"
	snapshotSuffix = ".snapshot.gz"
)

var ErrSnapshotMismatch = errors.New("routedb: snapshot does not match the requested version")

// Version names one download of the route database: the leading twelve hex
// digits of its sha256. The route store reports it as its catalogue version.
func Version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

type snapshot struct {
	Format  int
	Version string
	Result  ParseResult
}

// SnapshotCache keeps the parsed catalogue of the current route database on disk
// so a restart with an unchanged download skips the JSON parse. Only the latest
// version is retained.
type SnapshotCache struct {
	dir    string
	logger *slog.Logger
}

func NewSnapshotCache(dir string, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{dir: dir, logger: logger.With("component", "routedb_snapshot")}
}

func (c *SnapshotCache) path(version string) string {
	return filepath.Join(c.dir, snapshotPrefix+version+snapshotSuffix)
}

// Load returns the catalogue stored for version. A missing file, a snapshot of
// another format or version, and a result that fails Validate are all errors.
func (c *SnapshotCache) Load(version string) (*ParseResult, error) {
	f, err := os.Open(c.path(version))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", version, err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", version, err)
	}
	if snap.Format != snapshotFormat || snap.Version != version {
		return nil, fmt.Errorf("%w: format %d version %q", ErrSnapshotMismatch, snap.Format, snap.Version)
	}
	if err := snap.Result.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", version, err)
	}
	return &snap.Result, nil
}

// Save stores result as the snapshot of version and removes snapshots of every
// other version.
func (c *SnapshotCache) Save(version string, result *ParseResult) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, snapshotPrefix+"*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	zw, err := gzip.NewWriterLevel(tmp, gzip.BestSpeed)
	if err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	encErr := gob.NewEncoder(zw).Encode(snapshot{Format: snapshotFormat, Version: version, Result: *result})
	if err := errors.Join(encErr, zw.Close(), tmp.Close()); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, c.path(version)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if removed := c.removeOthers(version); removed > 0 {
		c.logger.Debug("removed outdated snapshots", "count", removed, "kept", version)
	}
	return nil
}

func (c *SnapshotCache) removeOthers(keep string) int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		if name == filepath.Base(c.path(keep)) {
			continue
		}
		if os.Remove(filepath.Join(c.dir, name)) == nil {
			removed++
		}
	}
	return removed
}
