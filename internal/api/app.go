package api

import (
	"time"

	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/auth"
	"github.com/yourname/rehabtracker/internal/config"
	"github.com/yourname/rehabtracker/internal/storage"
)

type App interface {
	Logger() internal.Logger
	DailyLogRepo() storage.DailyLogRepository
	Auth() auth.Provider
	Config() *config.Config
	// Now is the current time in the configured time zone.
	Now() time.Time
}

type Application struct {
	cfg    *config.Config
	logger internal.Logger
	repo   storage.DailyLogRepository
	auth   auth.Provider
	clock  func() time.Time
}

type Option func(*Application)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(a *Application) { a.clock = clock }
}

func NewApp(cfg *config.Config, logger internal.Logger, repo storage.DailyLogRepository, provider auth.Provider, opts ...Option) *Application {
	a := &Application{cfg: cfg, logger: logger, repo: repo, auth: provider, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Application) Logger() internal.Logger                  { return a.logger }
func (a *Application) DailyLogRepo() storage.DailyLogRepository { return a.repo }
func (a *Application) Auth() auth.Provider                      { return a.auth }
func (a *Application) Config() *config.Config                   { return a.cfg }
func (a *Application) Now() time.Time                           { return a.clock().In(a.cfg.Location()) }

var _ App = (*Application)(nil)
