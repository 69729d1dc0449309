package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/runoshun/todolog/internal/domain"
)

// Validate checks the merged configuration.
// The returned error is a criterio.FieldErrors listing every invalid field.
func Validate(cfg *domain.Config) error {
	return criterio.ValidateStruct(
		criterio.Run("store.backend", string(cfg.Store.Backend), validBackend),
		criterio.Run("tracking.max_segment", cfg.Tracking.MaxSegment, optionalDuration),
		criterio.Run("tracking.section_header", cfg.Tracking.SectionHeader, singleLine),
		criterio.Run("jira.timeout", cfg.Jira.Timeout, optionalDuration),
		criterio.Run("jira.auth", string(cfg.Jira.Auth), validAuth),
		criterio.Run("log.level", cfg.Log.Level, validLevel),
		validateJira(cfg),
	)
}

// validateJira checks the settings the jira backend needs.
func validateJira(cfg *domain.Config) error {
	if cfg.Store.Backend != domain.StoreBackendJira {
		return nil
	}
	var errs criterio.FieldErrorsBuilder
	if err := absoluteURL(cfg.Jira.BaseURL); err != nil {
		errs = errs.Append("jira.base_url", err)
	}
	if cfg.Jira.Token == "" && cfg.Jira.TokenEnv == "" {
		errs = errs.Append("jira.token_env", errors.New("token or token_env is required"))
	}
	if cfg.Jira.Auth != domain.JiraAuthBearer && cfg.Jira.Email == "" {
		errs = errs.Append("jira.email", errors.New("required for basic auth"))
	}
	return errs.ToError()
}

func validBackend(b string) error {
	if !domain.StoreBackend(b).IsValid() {
		return fmt.Errorf("%q: %w", b, domain.ErrUnknownStoreBackend)
	}
	return nil
}

func validAuth(a string) error {
	switch domain.JiraAuth(a) {
	case "", domain.JiraAuthBasic, domain.JiraAuthBearer:
		return nil
	}
	return fmt.Errorf("must be basic or bearer, got %q", a)
}

func validLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be debug, info, warn or error, got %q", level)
}

func optionalDuration(s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func singleLine(s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must be a single line")
	}
	return nil
}

func absoluteURL(s string) error {
	if s == "" {
		return errors.New("required for the jira backend")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL %q", s)
	}
	return nil
}
