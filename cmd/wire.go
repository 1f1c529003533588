package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/gosocial-cli/internal/adapters/httpapi"
	"github.com/bnema/gosocial-cli/internal/adapters/httpapi/normalize"
	tomlrepo "github.com/bnema/gosocial-cli/internal/adapters/repo/toml"
	"github.com/bnema/gosocial-cli/internal/application"
	"github.com/bnema/gosocial-cli/internal/config"
	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/logging"
	"github.com/bnema/gosocial-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	clock    ports.Clock
	session  *application.SessionStore
	gateway  *httpapi.Gateway
	accounts *application.AccountService
	posts    *application.PostService
	users    *application.UserService
	now      func() time.Time
}

func wireApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v, config.Options{})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	repo, err := tomlrepo.NewSessionRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	clock := ports.SystemClock{}
	state := application.NewSessionState()

	client, err := httpapi.NewClient(httpapi.Options{
		BaseURL: cfg.API.BaseURL,
		Origin:  cfg.API.Origin,
		Timeout: cfg.API.Timeout,
		Tokens:  state,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}
	gateway := httpapi.NewGateway(client, normalize.New(clock.Now), logger)

	session := application.NewSessionStore(state, repo, gateway, clock, logger)
	if err := session.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		clock:    clock,
		session:  session,
		gateway:  gateway,
		accounts: application.NewAccountService(gateway),
		posts:    application.NewPostService(gateway),
		users:    application.NewUserService(gateway),
		now:      clock.Now,
	}, nil
}

func (a *app) newFeed(pageSize int, sort domain.SortOrder) *application.FeedCoordinator {
	if pageSize <= 0 {
		pageSize = a.cfg.Feed.PageSize
	}
	return application.NewFeedCoordinator(a.gateway, application.FeedOptions{
		PageSize: pageSize,
		Debounce: a.cfg.Feed.Debounce,
		CacheTTL: a.cfg.Feed.CacheTTL,
		Sort:     sort,
		Clock:    a.clock,
		Logger:   a.logger,
	})
}

func (a *app) close() {
	if a == nil {
		return
	}
	a.session.Dispose()
	_ = a.logger.Sync()
}
