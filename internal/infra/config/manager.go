package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	repoDir       string // Path to the project .todolog directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/todolog)
}

// NewManager creates a new Manager.
func NewManager(repoDir string) *Manager {
	return &Manager{
		repoDir:       repoDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(repoDir, globalConfDir string) *Manager {
	return &Manager{
		repoDir:       repoDir,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo returns information about the project config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return getConfigInfo(filepath.Join(m.repoDir, domain.ConfigFileName))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates the project config file with the default template.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	return initConfig(m.repoDir, cfg)
}

// InitGlobalConfig creates the global config file with the default template.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	return initConfig(m.globalConfDir, cfg)
}

func initConfig(dir string, cfg *domain.Config) error {
	path := filepath.Join(dir, domain.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate(cfg)), 0o600)
}
