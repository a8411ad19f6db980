package store

import (
	"io/fs"
	"path/filepath"
)

// Stats is a compact view of store health used by the maintenance sweep.
type Stats struct {
	DiskBytes         uint64
	WALBytes          uint64
	L0Files           int
	CompactionBacklog uint64
}

// GetStats returns best-effort metrics about the pebble DB: on-disk size
// of the DB directory plus a few LSM figures from pebble's own metrics.
func GetStats() Stats {
	var s Stats
	if db == nil || dbPath == "" {
		return s
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	s.DiskBytes = total
	if m := db.Metrics(); m != nil {
		s.WALBytes = m.WAL.Size
		s.L0Files = int(m.Levels[0].NumFiles)
		s.CompactionBacklog = m.Compact.EstimatedDebt
	}
	return s
}
