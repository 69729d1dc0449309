// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/infra/config"
	"github.com/runoshun/todolog/internal/infra/git"
	"github.com/runoshun/todolog/internal/infra/gitstore"
	"github.com/runoshun/todolog/internal/infra/jira"
	"github.com/runoshun/todolog/internal/infra/jsonstore"
	"github.com/runoshun/todolog/internal/infra/logging"
	"github.com/runoshun/todolog/internal/usecase"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// Config holds the application paths.
type Config struct {
	RepoRoot  string // Repository root, or the working directory outside git
	ConfigDir string // Path to .todolog
	LogDir    string // Path to .todolog/logs
}

func newConfig(root string) Config {
	return Config{
		RepoRoot:  root,
		ConfigDir: domain.RepoConfigDir(root),
		LogDir:    domain.LogDir(root),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.IssueStore
	Syncer        domain.RefSyncer // nil unless the backend keeps a local copy
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Shared services
	Editor   *shared.Editor
	Emitter  *shared.WorklogEmitter
	Sessions *shared.WorkSessionManager

	// Pointer fields
	AppConfig *domain.Config
	closer    interface{ Close() error }

	// Configuration
	Config Config
}

// New creates a new Container for the project enclosing dir.
// Outside a git repository dir itself is the project root.
func New(dir string) (*Container, error) {
	root := dir
	author := ""
	gitClient, err := git.NewClient(dir)
	switch {
	case err == nil:
		root = gitClient.RepoRoot()
		author = gitClient.UserEmail()
	case !errors.Is(err, domain.ErrNotGitRepository):
		return nil, err
	}

	cfg := newConfig(root)
	configLoader := config.NewLoader(cfg.ConfigDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LogDir, logging.ParseLevel(appConfig.Log.Level))
	clock := domain.RealClock{}

	store, syncer, err := newStore(cfg, appConfig, author, clock, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	c := NewWithDeps(cfg, appConfig, store, clock, logger)
	c.Syncer = syncer
	c.ConfigLoader = configLoader
	c.ConfigManager = config.NewManager(cfg.ConfigDir)
	c.closer = logger
	return c, nil
}

// newStore builds the backend selected by [store] backend.
func newStore(cfg Config, appConfig *domain.Config, author string, clock domain.Clock, logger domain.Logger) (domain.IssueStore, domain.RefSyncer, error) {
	switch appConfig.Store.Backend {
	case domain.StoreBackendGit, "":
		path := appConfig.Store.Path
		if path == "" {
			path = cfg.RepoRoot
		}
		store, err := gitstore.New(path, appConfig.Store.Namespace, author, clock)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	case domain.StoreBackendJSON:
		path := appConfig.Store.Path
		if path == "" {
			path = filepath.Join(cfg.ConfigDir, domain.StoreFileName)
		}
		return jsonstore.New(path, author, clock), nil, nil

	case domain.StoreBackendJira:
		token := appConfig.Jira.Token
		if appConfig.Jira.TokenEnv != "" {
			if v := os.Getenv(appConfig.Jira.TokenEnv); v != "" {
				token = v
			}
		}
		client, err := jira.New(jira.Options{
			Logger:  logger,
			BaseURL: appConfig.Jira.BaseURL,
			Email:   appConfig.Jira.Email,
			Token:   token,
			Auth:    appConfig.Jira.Auth,
			Timeout: appConfig.JiraTimeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownStoreBackend, appConfig.Store.Backend)
	}
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store domain.IssueStore, clock domain.Clock, logger domain.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	codec := checklist.NewCodec(appConfig.Tracking.SectionHeader)
	editor := shared.NewEditor(store, codec, shared.NewIssueLocks(), logger)
	emitter := shared.NewWorklogEmitter(store, logger)
	return &Container{
		Store:     store,
		Clock:     clock,
		Logger:    logger,
		Editor:    editor,
		Emitter:   emitter,
		Sessions:  shared.NewWorkSessionManager(editor, emitter, clock, logger, appConfig.MaxSegmentDuration()),
		AppConfig: appConfig,
		Config:    cfg,
	}
}

// Close releases log files.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ResolveIssue returns the explicit issue key or the configured default.
func (c *Container) ResolveIssue(explicit string) (string, error) {
	return c.AppConfig.ResolveIssue(explicit)
}

// UseCase factory methods

// AddTodoUseCase returns a new AddTodo use case.
func (c *Container) AddTodoUseCase() *usecase.AddTodo {
	return usecase.NewAddTodo(c.Editor, c.Clock, c.Logger)
}

// SeedTodosUseCase returns a new SeedTodos use case.
func (c *Container) SeedTodosUseCase() *usecase.SeedTodos {
	return usecase.NewSeedTodos(c.Editor, c.Clock, c.Logger)
}

// ListTodosUseCase returns a new ListTodos use case.
func (c *Container) ListTodosUseCase() *usecase.ListTodos {
	return usecase.NewListTodos(c.Editor)
}

// SetTodoStatusUseCase returns a new SetTodoStatus use case.
func (c *Container) SetTodoStatusUseCase() *usecase.SetTodoStatus {
	return usecase.NewSetTodoStatus(c.Editor, c.Logger)
}

// EditTodoUseCase returns a new EditTodo use case.
func (c *Container) EditTodoUseCase() *usecase.EditTodo {
	return usecase.NewEditTodo(c.Editor, c.Logger)
}

// RemoveTodoUseCase returns a new RemoveTodo use case.
func (c *Container) RemoveTodoUseCase() *usecase.RemoveTodo {
	return usecase.NewRemoveTodo(c.Editor, c.Logger)
}

// StartTodoWorkUseCase returns a new StartTodoWork use case.
func (c *Container) StartTodoWorkUseCase() *usecase.StartTodoWork {
	return usecase.NewStartTodoWork(c.Sessions, c.Logger)
}

// CheckpointTodoWorkUseCase returns a new CheckpointTodoWork use case.
func (c *Container) CheckpointTodoWorkUseCase() *usecase.CheckpointTodoWork {
	return usecase.NewCheckpointTodoWork(c.Sessions, c.Logger)
}

// PauseTodoWorkUseCase returns a new PauseTodoWork use case.
func (c *Container) PauseTodoWorkUseCase() *usecase.PauseTodoWork {
	return usecase.NewPauseTodoWork(c.Sessions, c.Logger)
}

// CompleteTodoWorkUseCase returns a new CompleteTodoWork use case.
func (c *Container) CompleteTodoWorkUseCase() *usecase.CompleteTodoWork {
	return usecase.NewCompleteTodoWork(c.Sessions, c.Logger, c.AppConfig.ShouldMarkCompleted())
}

// CancelTodoWorkUseCase returns a new CancelTodoWork use case.
func (c *Container) CancelTodoWorkUseCase() *usecase.CancelTodoWork {
	return usecase.NewCancelTodoWork(c.Sessions, c.Logger)
}

// ListSessionsUseCase returns a new ListSessions use case.
func (c *Container) ListSessionsUseCase() *usecase.ListSessions {
	return usecase.NewListSessions(c.Sessions)
}

// ShowIssueUseCase returns a new ShowIssue use case.
func (c *Container) ShowIssueUseCase() *usecase.ShowIssue {
	return usecase.NewShowIssue(c.Editor, c.Store)
}

// SyncRefsUseCase returns a new SyncRefs use case.
func (c *Container) SyncRefsUseCase() *usecase.SyncRefs {
	return usecase.NewSyncRefs(c.Syncer, c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.AppConfig)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.LogDir)
}
