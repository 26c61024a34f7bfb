package trainer

import (
	"fmt"
	"time"

	"github.com/lox/unoforbots/internal/fileutil"
)

const recordFileVersion = 1

// Record is the persisted training progress.
type Record struct {
	Version int       `json:"version"`
	Epsilon float64   `json:"epsilon"`
	Episode int       `json:"episode"`
	Steps   int64     `json:"steps"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveRecord writes r to path as JSON.
func SaveRecord(path string, r Record) error {
	r.Version = recordFileVersion
	if err := fileutil.WriteJSONAtomic(path, r); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// LoadRecord reads a progress record written by SaveRecord.
func LoadRecord(path string) (Record, error) {
	var r Record
	if err := fileutil.ReadJSON(path, &r); err != nil {
		return Record{}, fmt.Errorf("load progress: %w", err)
	}
	if r.Version != recordFileVersion {
		return Record{}, fmt.Errorf("load progress: unsupported version %d", r.Version)
	}
	if r.Episode < 0 || r.Epsilon < 0 || r.Epsilon > 1 {
		return Record{}, fmt.Errorf("load progress: invalid record (episode %d, epsilon %v)", r.Episode, r.Epsilon)
	}
	return r, nil
}
