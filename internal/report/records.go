package report

import (
	"encoding/json"

	"github.com/wikibots/redirect-patroller/internal/redirect"
)

// Record is one entry of the report page. Key names are consumed by other
// tools and must not change.
type Record struct {
	PageID int64  `json:"pageid"`
	Title  string `json:"title"`
	Target string `json:"target"`
	User   string `json:"user"`
}

// Records converts normalized candidates to report records, keeping order.
func Records(candidates []redirect.Candidate) []Record {
	out := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Record{
			PageID: c.PageID,
			Title:  c.Title,
			Target: c.RawTarget,
			User:   c.Creator,
		})
	}
	return out
}

// EncodeRecords renders records as a compact JSON array; no records is "[]".
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
