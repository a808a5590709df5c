// Package config reads the database and run settings of lisa-tools from an env-file
// layered under the process environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-steplib/lisa-tools/test/testrun"
)

// DefaultPath is the env-file read when no --config is given.
const DefaultPath = "config/db.config"

const (
	defaultPort          = 5432
	defaultSSLMode       = "disable"
	defaultTableName     = "TestResults"
	defaultPerfTableName = "PerfResults"
	defaultKVPTimeout    = 300
	defaultKVPPoll       = 10
)

// Config ...
type Config struct {
	Host          string           `env:"DB_HOST"`
	Port          int              `env:"DB_PORT"`
	Name          string           `env:"DB_NAME"`
	User          string           `env:"DB_USER"`
	Password      stepconf.Secret  `env:"DB_PASSWORD"`
	SSLMode       string           `env:"DB_SSLMODE,opt[disable,allow,prefer,require,verify-ca,verify-full,]"`
	TableName     string           `env:"TABLE_NAME"`
	PerfTableName string           `env:"PERF_TABLE_NAME"`
	CreateTables  bool             `env:"CREATE_TABLES,opt[true,false,]"`
	MissingResult string           `env:"MISSING_RESULT_POLICY,opt[skip,unknown,]"`
	// KVPTimeout and KVPPollInterval are in seconds.
	KVPTimeout      int `env:"KVP_TIMEOUT"`
	KVPPollInterval int `env:"KVP_POLL_INTERVAL"`
}

// Load parses the env-file at pth. Variables set in the process environment take
// precedence over the file.
func Load(pth string) (Config, error) {
	repo, err := NewFileRepository(pth, env.NewRepository())
	if err != nil {
		return Config{}, err
	}
	return Parse(repo)
}

// Parse decodes the configuration from repo and fills in defaults.
func Parse(repo env.Repository) (Config, error) {
	var cfg Config
	if err := stepconf.NewInputParser(repo).Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.SSLMode == "" {
		c.SSLMode = defaultSSLMode
	}
	if c.TableName == "" {
		c.TableName = defaultTableName
	}
	if c.PerfTableName == "" {
		c.PerfTableName = defaultPerfTableName
	}
	if c.MissingResult == "" {
		c.MissingResult = string(testrun.SkipMissing)
	}
	if c.KVPTimeout == 0 {
		c.KVPTimeout = defaultKVPTimeout
	}
	if c.KVPPollInterval == 0 {
		c.KVPPollInterval = defaultKVPPoll
	}
}

func (c Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("DB_PORT out of range: %d", c.Port)
	}
	if c.KVPTimeout < 0 {
		return fmt.Errorf("KVP_TIMEOUT must be positive: %d", c.KVPTimeout)
	}
	if c.KVPPollInterval < 0 {
		return fmt.Errorf("KVP_POLL_INTERVAL must be positive: %d", c.KVPPollInterval)
	}
	return nil
}

// ValidateDatabase reports the connection settings a database insert cannot do without.
func (c Config) ValidateDatabase() error {
	var missing []string
	for key, value := range map[string]string{"DB_HOST": c.Host, "DB_NAME": c.Name, "DB_USER": c.User} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("required variable(s) not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DatabaseURL returns the postgres connection string.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, string(c.Password)),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// MissingResultPolicy ...
func (c Config) MissingResultPolicy() testrun.MissingResultPolicy {
	return testrun.MissingResultPolicy(c.MissingResult)
}

// KVPTimeoutDuration ...
func (c Config) KVPTimeoutDuration() time.Duration {
	return time.Duration(c.KVPTimeout) * time.Second
}

// KVPPollDuration ...
func (c Config) KVPPollDuration() time.Duration {
	return time.Duration(c.KVPPollInterval) * time.Second
}
