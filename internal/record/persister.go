// Package record persists extraction records: one JSON file per reel, plus a
// SQLite index used to skip already-extracted reels on reruns.
package record

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// Persister writes one self-contained JSON record per reel. Writes are
// idempotent: the file name is keyed by reel ID and a rerun overwrites
// rather than duplicates. I/O failures are logged and swallowed; losing one
// record is preferable to halting an otherwise-successful batch.
type Persister struct {
	dir   string
	store *Store // optional run index; nil disables indexing
}

// NewPersister creates a persister writing into dir. store may be nil.
func NewPersister(dir string, store *Store) *Persister {
	return &Persister{dir: dir, store: store}
}

// Persist writes the record. Never returns an error to the caller: the
// traversal loop must not be aborted by persistence failures.
func (p *Persister) Persist(rec types.ExtractionRecord) {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		slog.Error("failed to create output directory", "dir", p.dir, "err", err)
		return
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		slog.Error("failed to marshal record", "reel_id", rec.ReelID, "err", err)
		return
	}

	path := p.path(rec.ReelID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("failed to write record", "path", path, "err", err)
		return
	}

	if p.store != nil {
		if err := p.store.SaveRecord(&rec); err != nil {
			slog.Warn("failed to index record", "reel_id", rec.ReelID, "err", err)
		}
	}

	slog.Info("saved record", "reel_id", rec.ReelID, "path", path, "failed", rec.Error != "")
}

// Has reports whether a record for the reel already exists, consulting the
// index first and falling back to file existence.
func (p *Persister) Has(reelID string) bool {
	if p.store != nil {
		if ok, err := p.store.Has(reelID); err == nil && ok {
			return true
		}
	}
	_, err := os.Stat(p.path(reelID))
	return err == nil
}

func (p *Persister) path(reelID string) string {
	return filepath.Join(p.dir, reelID+".json")
}

// Prune scans dir for record files and removes those keep rejects, returning
// both lists. With dryRun nothing is deleted but the lists are still
// reported. Unreadable or malformed files are kept: deleting on a parse error
// would turn corruption into data loss.
func Prune(dir string, keep func(types.ExtractionRecord) bool, dryRun bool) (kept, removed []string, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, err
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("could not read record, keeping", "path", path, "err", err)
			kept = append(kept, path)
			continue
		}

		var rec types.ExtractionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			slog.Warn("malformed record, keeping", "path", path, "err", err)
			kept = append(kept, path)
			continue
		}

		if keep(rec) {
			kept = append(kept, path)
			continue
		}

		if !dryRun {
			if err := os.Remove(path); err != nil {
				slog.Warn("failed to delete record", "path", path, "err", err)
				kept = append(kept, path)
				continue
			}
		}
		removed = append(removed, path)
	}

	return kept, removed, nil
}
