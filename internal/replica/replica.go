// Package replica reads unreviewed redirects from a wiki database replica.
package replica

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/redirect"
	"go.uber.org/zap"
)

// candidatesQuery selects redirects in the PageTriage queue that are still
// unreviewed and carry the redirect-target tag, with the author of their
// latest revision.
const candidatesQuery = `SELECT page_id, page_title, ptrpt_value, actor_name
FROM page
JOIN pagetriage_page ON page_id = ptrp_page_id
JOIN pagetriage_page_tags ON ptrp_page_id = ptrpt_page_id
JOIN revision ON page_latest = rev_id
JOIN actor ON rev_actor = actor_id
WHERE ptrp_reviewed = 0
AND ptrpt_tag_id = ?
AND page_namespace = ?
AND page_is_redirect = 1
ORDER BY page_id`

type Source struct {
	db        *sql.DB
	namespace int
	tagID     int
	timeout   time.Duration
	logger    *zap.Logger
}

// DriverConfig builds the MySQL driver configuration for a replica.
func DriverConfig(cfg config.ReplicaConfig, creds config.Credentials) *mysql.Config {
	dc := mysql.NewConfig()
	dc.User = creds.DBUser
	dc.Passwd = creds.DBPassword
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	dc.Timeout = 30 * time.Second
	dc.ReadTimeout = cfg.Timeout
	return dc
}

func Open(cfg config.ReplicaConfig, creds config.Credentials, logger *zap.Logger) (*Source, error) {
	connector, err := mysql.NewConnector(DriverConfig(cfg, creds))
	if err != nil {
		return nil, fmt.Errorf("replica connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(cfg.Timeout)
	return NewSource(db, cfg, logger), nil
}

func NewSource(db *sql.DB, cfg config.ReplicaConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		db:        db,
		namespace: cfg.Namespace,
		tagID:     cfg.TagID,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Candidates runs the queue query. NULL columns come back as empty fields;
// callers validate each candidate.
func (s *Source) Candidates(ctx context.Context) ([]redirect.Candidate, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, candidatesQuery, s.tagID, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("query replica: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates, err := scanCandidates(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched candidates",
		zap.Int("count", len(candidates)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return candidates, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCandidates(rows rowScanner) ([]redirect.Candidate, error) {
	var out []redirect.Candidate
	for rows.Next() {
		var (
			pageID  sql.NullInt64
			title   sql.NullString
			target  sql.NullString
			creator sql.NullString
		)
		if err := rows.Scan(&pageID, &title, &target, &creator); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, redirect.Candidate{
			PageID:    pageID.Int64,
			Title:     title.String,
			RawTarget: target.String,
			Creator:   creator.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return out, nil
}
