package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"heinscrape/internal/citation"
)

// EnvConfigFile names the environment variable holding a default config path.
const EnvConfigFile = "HEINSCRAPE_CONFIG"

type Config struct {
	Workers    int           `yaml:"workers"`
	RateLimit  int           `yaml:"rate_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	UserAgent  string        `yaml:"user_agent"`
	Verbose    bool          `yaml:"verbose"`

	Rules citation.Rules `yaml:"rules"`
}

func New() *Config {
	return &Config{
		Workers:    4,
		RateLimit:  5,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Rules:      citation.DefaultRules(),
	}
}

// Load overlays the YAML file at path onto the defaults. Keys missing from
// the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// BindFlags registers the runtime knobs on fs. Flags override file values
// because they are parsed after Load.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Workers, "workers", c.Workers, "Number of concurrent workers")
	fs.IntVar(&c.RateLimit, "rate", c.RateLimit, "Maximum remote page requests per second")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "HTTP request timeout")
	fs.IntVar(&c.MaxRetries, "retries", c.MaxRetries, "Maximum retry attempts for remote pages")
}

func (c *Config) Validate() error {
	var errs []error

	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be greater than 0"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("rate must be greater than 0"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be greater than 0"))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, errors.New("retries must be greater than 0"))
	}
	if c.Rules.TitleMarker == "" {
		errs = append(errs, errors.New("rules.title_marker must not be empty"))
	}
	if len(c.Rules.JournalMarkers) == 0 {
		errs = append(errs, errors.New("rules.journal_markers must not be empty"))
	}
	if c.Rules.AuthorSeparator == "" {
		errs = append(errs, errors.New("rules.author_separator must not be empty"))
	}

	return errors.Join(errs...)
}
