// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	repoDir       string // Path to the project .todolog directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/todolog)
}

// NewLoader creates a new Loader.
func NewLoader(repoDir string) *Loader {
	return &Loader{
		repoDir:       repoDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoDir, globalConfDir string) *Loader {
	return &Loader{
		repoDir:       repoDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (repo + global).
// Repository config takes precedence over global config, and TODOLOG_ISSUE
// takes precedence over both for the default issue.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- repo (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}
	if issue := os.Getenv(domain.EnvDefaultIssue); issue != "" {
		base.DefaultIssue = issue
	}

	if err := Validate(base); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the project configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	if l.repoDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.repoDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
// Values of the wrong type are reported as warnings and ignored.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		switch section {
		case "default_issue":
			if s, ok := value.(string); ok {
				res.DefaultIssue = s
			} else {
				warn("default_issue must be a string")
			}
		case "store":
			forEachKey(value, section, warn, func(k string, v any) bool {
				switch k {
				case "backend":
					return setString(v, func(s string) { res.Store.Backend = domain.StoreBackend(s) })
				case "path":
					return setString(v, func(s string) { res.Store.Path = s })
				case "namespace":
					return setString(v, func(s string) { res.Store.Namespace = s })
				}
				return false
			})
		case "jira":
			forEachKey(value, section, warn, func(k string, v any) bool {
				switch k {
				case "base_url":
					return setString(v, func(s string) { res.Jira.BaseURL = s })
				case "email":
					return setString(v, func(s string) { res.Jira.Email = s })
				case "token":
					return setString(v, func(s string) { res.Jira.Token = s })
				case "token_env":
					return setString(v, func(s string) { res.Jira.TokenEnv = s })
				case "auth":
					return setString(v, func(s string) { res.Jira.Auth = domain.JiraAuth(s) })
				case "timeout":
					return setString(v, func(s string) { res.Jira.Timeout = s })
				}
				return false
			})
		case "tracking":
			forEachKey(value, section, warn, func(k string, v any) bool {
				switch k {
				case "max_segment":
					return setString(v, func(s string) { res.Tracking.MaxSegment = s })
				case "section_header":
					return setString(v, func(s string) { res.Tracking.SectionHeader = s })
				case "mark_completed":
					b, ok := v.(bool)
					if ok {
						res.Tracking.MarkCompleted = &b
					}
					return ok
				}
				return false
			})
		case "log":
			forEachKey(value, section, warn, func(k string, v any) bool {
				if k == "level" {
					return setString(v, func(s string) { res.Log.Level = s })
				}
				return false
			})
		default:
			warn("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// forEachKey walks a table. set reports false for unknown keys or wrong types.
func forEachKey(value any, section string, warn func(string, ...any), set func(k string, v any) bool) {
	m, ok := value.(map[string]any)
	if !ok {
		warn("[%s] must be a table", section)
		return
	}
	for k, v := range m {
		if !set(k, v) {
			warn("unknown key or invalid value in [%s]: %s", section, k)
		}
	}
}

func setString(v any, set func(string)) bool {
	s, ok := v.(string)
	if ok {
		set(s)
	}
	return ok
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	if override.DefaultIssue != "" {
		result.DefaultIssue = override.DefaultIssue
	}
	if override.Store.Backend != "" {
		result.Store.Backend = override.Store.Backend
	}
	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Store.Namespace != "" {
		result.Store.Namespace = override.Store.Namespace
	}
	if override.Jira.BaseURL != "" {
		result.Jira.BaseURL = override.Jira.BaseURL
	}
	if override.Jira.Email != "" {
		result.Jira.Email = override.Jira.Email
	}
	if override.Jira.Token != "" {
		result.Jira.Token = override.Jira.Token
	}
	if override.Jira.TokenEnv != "" {
		result.Jira.TokenEnv = override.Jira.TokenEnv
	}
	if override.Jira.Auth != "" {
		result.Jira.Auth = override.Jira.Auth
	}
	if override.Jira.Timeout != "" {
		result.Jira.Timeout = override.Jira.Timeout
	}
	if override.Tracking.MaxSegment != "" {
		result.Tracking.MaxSegment = override.Tracking.MaxSegment
	}
	if override.Tracking.SectionHeader != "" {
		result.Tracking.SectionHeader = override.Tracking.SectionHeader
	}
	if override.Tracking.MarkCompleted != nil {
		result.Tracking.MarkCompleted = override.Tracking.MarkCompleted
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return &result
}
