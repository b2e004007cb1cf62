package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/locvowork/employee_management_sample/console/internal/config"
	"github.com/locvowork/employee_management_sample/console/internal/controller"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/gateway"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
	"github.com/locvowork/employee_management_sample/console/internal/notify"
	"github.com/locvowork/employee_management_sample/console/internal/preference"
	"github.com/locvowork/employee_management_sample/console/internal/seed"
	"github.com/locvowork/employee_management_sample/console/internal/session"
)

// Config is the resolved application configuration.
type Config struct {
	APIBaseURL     string
	APITimeout     time.Duration
	PrefsDir       string
	PrefsInMemory  bool
	PageSize       int
	SearchDebounce time.Duration
	SeedWorkers    int
	SeedRetries    int
}

// ConfigFromEnv maps the loaded environment onto Config.
func ConfigFromEnv() Config {
	env := config.DefaultEnvConfig
	return Config{
		APIBaseURL:     env.API_BASE_URL,
		APITimeout:     env.API_TIMEOUT,
		PrefsDir:       env.PREFS_DIR,
		PrefsInMemory:  env.PREFS_IN_MEMORY,
		PageSize:       env.PAGE_SIZE,
		SearchDebounce: env.SEARCH_DEBOUNCE,
		SeedWorkers:    env.SEED_WORKERS,
		SeedRetries:    env.SEED_RETRIES,
	}
}

type App struct {
	Config     Config
	Gateway    *gateway.Client
	Prefs      *preference.Store
	Notifier   domain.Notifier
	Controller *controller.CollectionController
	Session    *session.Session
	// Out receives rendered views and notifications.
	Out io.Writer
}

func NewApp(out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	return &App{Out: out}
}

// Initialize loads the environment, sets up logging and builds the app.
func (a *App) Initialize(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)
	logger.DebugLog(ctx, "Environment variables loaded successfully")

	return a.Build(ctx, ConfigFromEnv())
}

// Build wires the components for cfg.
func (a *App) Build(ctx context.Context, cfg Config) error {
	a.Config = cfg

	gw, err := gateway.NewClient(gateway.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout}, nil)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	a.Gateway = gw

	prefs, err := preference.Open(preference.Config{Path: cfg.PrefsDir, InMemory: cfg.PrefsInMemory})
	if err != nil {
		return fmt.Errorf("failed to open preference store: %w", err)
	}
	a.Prefs = prefs

	a.Notifier = notify.Multi{notify.LogNotifier{}, notify.NewTerminal(a.Out)}

	ctrl, err := controller.New(ctx, gw, controller.Options{
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
		Notifier:       a.Notifier,
		Preferences:    prefs,
	})
	if err != nil {
		prefs.Close()
		return fmt.Errorf("failed to create controller: %w", err)
	}
	a.Controller = ctrl

	a.Session = session.New(gw, session.Options{
		Notifier: a.Notifier,
		OnSaved: func(ctx context.Context, _ session.SavedEvent) {
			// refresh failures are already reported by the controller
			_ = ctrl.Refresh(ctx)
		},
	})

	logger.DebugLog(ctx, "Console initialized against %s", cfg.APIBaseURL)
	return nil
}

// NewSeeder returns a seeder that writes through the app's gateway.
func (a *App) NewSeeder() *seed.DataSeeder {
	return seed.NewDataSeeder(a.Gateway, seed.Options{
		Workers: a.Config.SeedWorkers,
		Retries: a.Config.SeedRetries,
	})
}

// Close releases the controller timer and the preference store.
func (a *App) Close() error {
	var errs []error
	if a.Controller != nil {
		a.Controller.Close()
	}
	if a.Prefs != nil {
		if err := a.Prefs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close preference store: %w", err))
		}
	}
	return errors.Join(errs...)
}
