package ancestry

import (
	"strings"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// Lookup resolves suburb names against a dataset.
type Lookup struct {
	ds *Dataset
}

// NewLookup wraps ds. A nil dataset never matches.
func NewLookup(ds *Dataset) *Lookup {
	return &Lookup{ds: ds}
}

// Lookup returns the record for suburb, or nil. An exact case-insensitive
// key match wins; otherwise the first key in dataset order containing the
// query. The returned record holds at most MaxAncestries groups.
func (l *Lookup) Lookup(suburb string) *models.AncestryRecord {
	q := strings.ToLower(strings.TrimSpace(suburb))
	if q == "" || l == nil || l.ds.Len() == 0 {
		return nil
	}

	if i, ok := l.ds.index[q]; ok {
		return truncated(l.ds.records[i])
	}
	for _, r := range l.ds.records {
		if strings.Contains(strings.ToLower(r.SuburbKey), q) {
			return truncated(r)
		}
	}
	return nil
}

func truncated(r models.AncestryRecord) *models.AncestryRecord {
	n := len(r.Ancestries)
	if n > MaxAncestries {
		n = MaxAncestries
	}
	out := r
	out.Ancestries = make([]models.AncestryShare, n)
	copy(out.Ancestries, r.Ancestries[:n])
	return &out
}
