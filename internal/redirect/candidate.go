package redirect

import (
	"fmt"
	"strings"
)

// Candidate is one unreviewed redirect as delivered by the replica query.
type Candidate struct {
	PageID    int64
	Title     string
	RawTarget string
	Creator   string
}

// MalformedRecordError reports a candidate that is missing required fields.
type MalformedRecordError struct {
	PageID  int64
	Missing []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed redirect record (pageid %d): missing %s", e.PageID, strings.Join(e.Missing, ", "))
}

func (c Candidate) Validate() error {
	var missing []string
	if c.PageID <= 0 {
		missing = append(missing, "pageid")
	}
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(c.RawTarget) == "" {
		missing = append(missing, "target")
	}
	if strings.TrimSpace(c.Creator) == "" {
		missing = append(missing, "creator")
	}
	if len(missing) > 0 {
		return &MalformedRecordError{PageID: c.PageID, Missing: missing}
	}
	return nil
}
