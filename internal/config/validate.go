package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var databaseName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	if c.Wiki.APIURL == "" {
		v.Add("wiki.apiURL is required")
	} else if err := validateURL(c.Wiki.APIURL); err != nil {
		v.Add("wiki.apiURL invalid: %v", err)
	}
	if strings.TrimSpace(c.Wiki.UserAgent) == "" {
		v.Add("wiki.userAgent is required")
	}
	if strings.TrimSpace(c.Wiki.ReportPage) == "" {
		v.Add("wiki.reportPage is required")
	}
	if c.Wiki.Timeout <= 0 {
		v.Add("wiki.timeout must be > 0")
	}
	if c.Wiki.Retries < 0 {
		v.Add("wiki.retries must be >= 0")
	}

	if c.Replica.Host == "" {
		v.Add("replica.host is required")
	}
	if c.Replica.Port <= 0 || c.Replica.Port > 65535 {
		v.Add("replica.port must be between 1 and 65535")
	}
	if !databaseName.MatchString(c.Replica.Database) {
		v.Add("replica.database must match %s", databaseName.String())
	}
	if c.Replica.TagID <= 0 {
		v.Add("replica.tagID must be > 0")
	}
	if c.Replica.Timeout <= 0 {
		v.Add("replica.timeout must be > 0")
	}

	if c.TrustList.Page != "" {
		if (c.TrustList.StartMarker == "") != (c.TrustList.EndMarker == "") {
			v.Add("trustList.startMarker and trustList.endMarker must be set together")
		}
		if c.TrustList.StartMarker != "" && c.TrustList.StartMarker == c.TrustList.EndMarker {
			v.Add("trustList.startMarker and trustList.endMarker must differ")
		}
	}

	seen := map[string]struct{}{}
	for i, id := range c.Rules.Disabled {
		if strings.TrimSpace(id) == "" {
			v.Add("rules.disabled[%d] is empty", i)
		} else if _, exists := seen[id]; exists {
			v.Add("rules.disabled[%d] %q is duplicated", i, id)
		} else {
			seen[id] = struct{}{}
		}
	}

	if c.Patrol.RatePerMinute < 0 {
		v.Add("patrol.ratePerMinute must be >= 0")
	}
	if c.Patrol.RatePerMinute > 0 && c.Patrol.Burst <= 0 {
		v.Add("patrol.burst must be > 0 when ratePerMinute is set")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		v.Add("logging.level must be debug|info|warn|error")
	}
	switch c.Logging.Format {
	case FormatConsole, FormatJSON:
	default:
		v.Add("logging.format must be console|json")
	}
	if c.Logging.DecisionLog != "" {
		if err := ensureWritableDir(c.resolvePath(c.Logging.DecisionLog)); err != nil {
			v.Add("logging.decisionLog invalid: %v", err)
		}
	}
	if c.Metrics.Textfile != "" {
		if err := ensureWritableDir(c.resolvePath(c.Metrics.Textfile)); err != nil {
			v.Add("metrics.textfile invalid: %v", err)
		}
	}

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

// ValidateCredentials checks the secrets a live run needs.
func (c *Config) ValidateCredentials() error {
	v := &ValidationError{}
	if c.Credentials.WikiUsername == "" {
		v.Add("%s is required", EnvWikiUsername)
	}
	if c.Credentials.WikiPassword == "" {
		v.Add("%s is required", EnvWikiPassword)
	}
	if c.Credentials.DBUser == "" {
		v.Add("%s is required", EnvDBUser)
	}
	if len(v.Problems) > 0 {
		return v
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("must include scheme and host")
	}
	return nil
}

// ensureWritableDir checks that the parent of path exists and is writable,
// or that its nearest existing ancestor is, since the directory is created on
// first use.
func ensureWritableDir(path string) error {
	dir := filepath.Dir(path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return err
		}
		dir = parent
	}

	file, err := os.CreateTemp(dir, "patroller-validate-*")
	if err != nil {
		return err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
