// Package wire provides dependency injection for the aim application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/example/aim/internal/adapters/git"
	ghadapter "github.com/example/aim/internal/adapters/github"
	"github.com/example/aim/internal/adapters/sqlite"
	"github.com/example/aim/internal/aid"
	"github.com/example/aim/internal/app"
	"github.com/example/aim/internal/config"
	"github.com/example/aim/internal/core/goal"
	"github.com/example/aim/internal/db"
	"github.com/example/aim/internal/ports/primary"
)

var (
	store       *db.Store
	cfg         config.Config
	goalService primary.GoalService
	goalRepo    *sqlite.GoalRepository
	configRepo  *sqlite.ConfigRepository
	generator   *aid.Generator
	once        sync.Once
)

// GoalService returns the singleton GoalService instance.
func GoalService() primary.GoalService {
	once.Do(initServices)
	return goalService
}

// SyncService builds a SyncService. The tracker client is constructed per
// call because it depends on resolved GitHub configuration; a missing or
// unreachable configuration is a fatal error for synchronization only.
func SyncService(ctx context.Context) (primary.SyncService, error) {
	once.Do(initServices)

	if err := cfg.RequireGitHub(); err != nil {
		return nil, err
	}
	tracker, err := ghadapter.NewTrackerClient(ctx, cfg.GitHub)
	if err != nil {
		return nil, err
	}

	return app.NewSyncEngine(tracker, goalRepo, generator), nil
}

// Store returns the initialized store.
func Store() *db.Store {
	once.Do(initServices)
	return store
}

// Config returns the merged configuration.
func Config() config.Config {
	once.Do(initServices)
	return cfg
}

// ConfigRepo returns the stored-config repository.
func ConfigRepo() *sqlite.ConfigRepository {
	once.Do(initServices)
	return configRepo
}

// initServices resolves configuration, opens the store, runs migrations,
// and builds the service graph. Called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}

	// First pass: project file and environment decide where the store lives.
	bootstrap, err := config.Resolve(config.ProjectProvider(cwd), config.EnvProvider())
	if err != nil {
		log.Fatalf("failed to resolve configuration: %v", err)
	}

	store, err = db.Open(bootstrap.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	goalRepo = sqlite.NewGoalRepository(store)
	configRepo = sqlite.NewConfigRepository(store)

	// Second pass: stored config is the highest precedence layer.
	stored, err := configRepo.All(ctx)
	if err != nil {
		log.Fatalf("failed to read stored configuration: %v", err)
	}
	cfg, err = config.Resolve(
		config.ProjectProvider(cwd),
		config.EnvProvider(),
		config.StoredProvider(stored),
	)
	if err != nil {
		log.Fatalf("failed to resolve configuration: %v", err)
	}

	generator = aid.NewGenerator(aid.DefaultConfig())
	goalService = app.NewGoalService(goalRepo, generator, goal.NewGate(), git.NewEnvProbe())
}
