package config

import "time"

type Config struct {
	ConfigVersion int             `yaml:"configVersion"`
	Wiki          WikiConfig      `yaml:"wiki"`
	Replica       ReplicaConfig   `yaml:"replica"`
	TrustList     TrustListConfig `yaml:"trustList"`
	Rules         RulesConfig     `yaml:"rules"`
	Patrol        PatrolConfig    `yaml:"patrol"`
	Logging       LoggingConfig   `yaml:"logging"`
	Metrics       MetricsConfig   `yaml:"metrics"`

	Credentials Credentials `yaml:"-"`

	baseDir string `yaml:"-"`
}

type WikiConfig struct {
	APIURL      string        `yaml:"apiURL"`
	UserAgent   string        `yaml:"userAgent"`
	ReportPage  string        `yaml:"reportPage"`
	EditSummary string        `yaml:"editSummary"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
}

type ReplicaConfig struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Database  string        `yaml:"database"`
	Namespace int           `yaml:"namespace"`
	TagID     int           `yaml:"tagID"`
	Timeout   time.Duration `yaml:"timeout"`
}

type TrustListConfig struct {
	Page        string `yaml:"page"`
	StartMarker string `yaml:"startMarker"`
	EndMarker   string `yaml:"endMarker"`
}

type RulesConfig struct {
	Disabled []string `yaml:"disabled"`
}

type PatrolConfig struct {
	RatePerMinute float64 `yaml:"ratePerMinute"`
	Burst         int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	DecisionLog string `yaml:"decisionLog"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Credentials are read from the environment, never from the config file.
type Credentials struct {
	WikiUsername string
	WikiPassword string
	DBUser       string
	DBPassword   string
}

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

const (
	EnvWikiUsername = "PATROLLER_WIKI_USERNAME"
	EnvWikiPassword = "PATROLLER_WIKI_PASSWORD"
	EnvDBUser       = "PATROLLER_DB_USER"
	EnvDBPassword   = "PATROLLER_DB_PASSWORD"
)

func Default() Config {
	return Config{
		ConfigVersion: 1,
		Wiki: WikiConfig{
			APIURL:      "https://en.wikipedia.org/w/api.php",
			UserAgent:   "redirect-patroller/dev",
			EditSummary: "Redirects to patrol (bot)",
			Timeout:     20 * time.Second,
			Retries:     3,
		},
		Replica: ReplicaConfig{
			Port:     3306,
			Database: "enwiki_p",
			TagID:    9,
			Timeout:  5 * time.Minute,
		},
		Patrol: PatrolConfig{
			RatePerMinute: 30,
			Burst:         1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}
