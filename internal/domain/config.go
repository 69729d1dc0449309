package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings     []string       `toml:"-"`
	DefaultIssue string         `toml:"default_issue,omitempty"` // Issue used when none is given
	Store        StoreConfig    `toml:"store"`
	Jira         JiraConfig     `toml:"jira"`
	Log          LogConfig      `toml:"log"`
	Tracking     TrackingConfig `toml:"tracking"`
}

// StoreBackend selects the issue store implementation.
type StoreBackend string

// Store backends.
const (
	StoreBackendGit  StoreBackend = "git"  // Issue documents inside git refs
	StoreBackendJSON StoreBackend = "json" // Single JSON file
	StoreBackendJira StoreBackend = "jira" // Jira REST API
)

// IsValid returns true if the backend is known.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendGit, StoreBackendJSON, StoreBackendJira:
		return true
	default:
		return false
	}
}

// StoreConfig holds settings from the [store] section.
type StoreConfig struct {
	Backend   StoreBackend `toml:"backend,omitempty"`   // git (default), json, jira
	Path      string       `toml:"path,omitempty"`      // Repository path (git) or file path (json)
	Namespace string       `toml:"namespace,omitempty"` // Ref namespace for the git backend (default: "todolog")
}

// JiraAuth selects the Jira authentication scheme.
type JiraAuth string

// Jira authentication schemes.
const (
	JiraAuthBasic  JiraAuth = "basic"  // email + API token
	JiraAuthBearer JiraAuth = "bearer" // personal access token
)

// JiraConfig holds settings from the [jira] section.
// Fields are ordered to minimize memory padding.
type JiraConfig struct {
	BaseURL  string   `toml:"base_url,omitempty"`  // e.g. https://example.atlassian.net
	Email    string   `toml:"email,omitempty"`     // Account email for basic auth
	Token    string   `toml:"token,omitempty"`     // API token (prefer token_env)
	TokenEnv string   `toml:"token_env,omitempty"` // Environment variable holding the token
	Auth     JiraAuth `toml:"auth,omitempty"`      // basic (default) or bearer
	Timeout  string   `toml:"timeout,omitempty"`   // HTTP timeout, e.g. "30s"
}

// TrackingConfig holds settings from the [tracking] section.
// Fields are ordered to minimize memory padding.
type TrackingConfig struct {
	MaxSegment    string `toml:"max_segment,omitempty"`    // Longest segment logged without an explicit time
	SectionHeader string `toml:"section_header,omitempty"` // Header of a newly created todo section
	MarkCompleted *bool  `toml:"mark_completed,omitempty"` // Check the todo on complete (default: true)
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// Directory and file names for todolog.
const (
	AppDirName     = "todolog"     // Global config directory name
	RepoDirName    = ".todolog"    // Project config and data directory
	ConfigFileName = "config.toml" // Config file name
	StoreFileName  = "issues.json" // JSON store file name
	LogDirName     = "logs"        // Log directory name
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultNamespace     = "todolog"
	DefaultMaxSegment    = 24 * time.Hour
	DefaultSectionHeader = "## Todos"
	DefaultJiraTimeout   = 30 * time.Second
	EnvDefaultIssue      = "TODOLOG_ISSUE"
)

// RepoConfigDir returns the project directory holding config and data.
func RepoConfigDir(root string) string {
	return filepath.Join(root, RepoDirName)
}

// RepoConfigPath returns the project config path.
func RepoConfigPath(root string) string {
	return filepath.Join(RepoConfigDir(root), ConfigFileName)
}

// LogDir returns the project log directory.
func LogDir(root string) string {
	return filepath.Join(RepoConfigDir(root), LogDirName)
}

// GlobalLogPath returns the log file shared by all issues.
func GlobalLogPath(logDir string) string {
	return filepath.Join(logDir, "todolog.log")
}

// IssueLogPath returns the log file of one issue.
func IssueLogPath(logDir, issueKey string) string {
	return filepath.Join(logDir, "issue-"+sanitizeFileName(issueKey)+".log")
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   StoreBackendGit,
			Namespace: DefaultNamespace,
		},
		Jira: JiraConfig{
			Auth: JiraAuthBasic,
		},
		Tracking: TrackingConfig{
			SectionHeader: DefaultSectionHeader,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// MaxSegmentDuration returns the parsed tracking.max_segment.
// Zero disables the guard.
func (c *Config) MaxSegmentDuration() time.Duration {
	if c.Tracking.MaxSegment == "" {
		return DefaultMaxSegment
	}
	d, err := time.ParseDuration(c.Tracking.MaxSegment)
	if err != nil {
		return DefaultMaxSegment
	}
	return d
}

// JiraTimeout returns the parsed jira.timeout.
func (c *Config) JiraTimeout() time.Duration {
	if c.Jira.Timeout == "" {
		return DefaultJiraTimeout
	}
	d, err := time.ParseDuration(c.Jira.Timeout)
	if err != nil || d <= 0 {
		return DefaultJiraTimeout
	}
	return d
}

// ShouldMarkCompleted returns the configured default for complete.
func (c *Config) ShouldMarkCompleted() bool {
	if c.Tracking.MarkCompleted == nil {
		return true
	}
	return *c.Tracking.MarkCompleted
}

// ResolveIssue picks the issue key from an explicit value or the configured default.
func (c *Config) ResolveIssue(explicit string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(c.DefaultIssue); key != "" {
		return key, nil
	}
	return "", ErrNoIssue
}

// RenderConfigTemplate renders a commented config file for `todolog config --init`.
func RenderConfigTemplate(cfg *Config) string {
	var b strings.Builder
	b.WriteString("# todolog configuration\n\n")
	if cfg.DefaultIssue != "" {
		fmt.Fprintf(&b, "default_issue = %q\n\n", cfg.DefaultIssue)
	} else {
		b.WriteString("# default_issue = \"PROJ-123\"\n\n")
	}

	b.WriteString("[store]\n")
	fmt.Fprintf(&b, "backend = %q # git, json or jira\n", cfg.Store.Backend)
	fmt.Fprintf(&b, "namespace = %q\n", cfg.Store.Namespace)
	b.WriteString("# path = \".\"\n\n")

	b.WriteString("[jira]\n")
	b.WriteString("# base_url = \"https://example.atlassian.net\"\n")
	b.WriteString("# email = \"me@example.com\"\n")
	b.WriteString("# token_env = \"JIRA_API_TOKEN\"\n")
	fmt.Fprintf(&b, "auth = %q # basic or bearer\n", cfg.Jira.Auth)
	fmt.Fprintf(&b, "# timeout = %q\n\n", DefaultJiraTimeout.String())

	b.WriteString("[tracking]\n")
	fmt.Fprintf(&b, "# max_segment = %q\n", DefaultMaxSegment.String())
	fmt.Fprintf(&b, "section_header = %q\n", cfg.Tracking.SectionHeader)
	b.WriteString("# mark_completed = true\n\n")

	b.WriteString("[log]\n")
	fmt.Fprintf(&b, "level = %q # debug, info, warn, error\n", cfg.Log.Level)
	return b.String()
}
