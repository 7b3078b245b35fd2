package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Action values recorded for each candidate.
const (
	ActionNone      = "none"
	ActionPatrolled = "patrolled"
	ActionFailed    = "failed"
	ActionDryRun    = "dry-run"
	ActionSkipped   = "skipped"
)

// Decision is written as a single JSON object per evaluated candidate.
type Decision struct {
	Timestamp time.Time `json:"ts"`
	RunID     string    `json:"run_id"`
	PageID    int64     `json:"pageid"`
	Title     string    `json:"title"`
	Target    string    `json:"target"`
	Creator   string    `json:"creator"`
	Patrol    bool      `json:"patrol"`
	Rule      string    `json:"rule,omitempty"`
	Trusted   bool      `json:"trusted,omitempty"`
	Action    string    `json:"action"`
	ErrorCode string    `json:"error_code,omitempty"`
}

type DecisionLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewDecisionLogger(w io.Writer) *DecisionLogger {
	return &DecisionLogger{w: w}
}

func OpenDecisionLog(path string) (*DecisionLogger, func() error, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewDecisionLogger(file), file.Close, nil
}

func (l *DecisionLogger) Write(decision Decision) error {
	if l == nil {
		return nil
	}
	if decision.Timestamp.IsZero() {
		decision.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(decision)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}
