// Package ancestry looks up suburb ancestry demographics from a static
// dataset keyed by suburb name.
package ancestry

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// MaxAncestries caps the groups returned per suburb.
const MaxAncestries = 5

// Dataset is an ordered suburb -> record table. Order follows the source
// document and decides which key wins a substring lookup.
type Dataset struct {
	records []models.AncestryRecord
	index   map[string]int // lower-cased key -> position
}

// NewDataset builds a dataset from records in order. A later record with a
// key already present replaces the earlier one in place.
func NewDataset(records []models.AncestryRecord) *Dataset {
	ds := &Dataset{index: make(map[string]int, len(records))}
	for _, r := range records {
		ds.add(r)
	}
	return ds
}

func (ds *Dataset) add(r models.AncestryRecord) {
	key := strings.ToLower(r.SuburbKey)
	if i, ok := ds.index[key]; ok {
		ds.records[i] = r
		return
	}
	ds.index[key] = len(ds.records)
	ds.records = append(ds.records, r)
}

// Len returns the number of suburbs.
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.records)
}

// Records returns the records in dataset order.
func (ds *Dataset) Records() []models.AncestryRecord {
	if ds == nil {
		return nil
	}
	out := make([]models.AncestryRecord, len(ds.records))
	copy(out, ds.records)
	return out
}

// LoadFile reads the ancestry JSON document:
//
//	{"Carlton": {"total_population": 16055, "ancestries": [{"group": "English", "percent": 21.4}, ...]}, ...}
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ancestry: read %s", path)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "ancestry: parse %s", path)
	}

	zap.L().Info("ancestry: loaded dataset",
		zap.String("path", path),
		zap.Int("suburbs", ds.Len()),
	)
	return ds, nil
}

// Parse decodes an ancestry document, keeping its key order.
func Parse(data []byte) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, eris.New("ancestry: invalid json")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, eris.New("ancestry: document is not an object")
	}

	ds := NewDataset(nil)
	var skipped int
	doc.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			skipped++
			return true
		}
		ds.add(recordFrom(key.String(), value))
		return true
	})

	if skipped > 0 {
		zap.L().Debug("ancestry: skipped non-object entries", zap.Int("skipped", skipped))
	}
	return ds, nil
}

func recordFrom(suburb string, v gjson.Result) models.AncestryRecord {
	r := models.AncestryRecord{
		SuburbKey:       suburb,
		TotalPopulation: int(v.Get("total_population").Int()),
	}
	v.Get("ancestries").ForEach(func(_, a gjson.Result) bool {
		r.Ancestries = append(r.Ancestries, models.AncestryShare{
			Group:   a.Get("group").String(),
			Percent: a.Get("percent").Float(),
		})
		return true
	})
	return r
}

// LoadOrEmpty is LoadFile that degrades to an empty dataset.
func LoadOrEmpty(path string) *Dataset {
	ds, err := LoadFile(path)
	if err != nil {
		zap.L().Error("ancestry: dataset unavailable", zap.String("path", path), zap.Error(err))
		return NewDataset(nil)
	}
	return ds
}
