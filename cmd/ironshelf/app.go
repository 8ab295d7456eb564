package main

import (
	"context"
	"time"

	"github.com/damacus/ironshelf/internal/config"
	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/logger"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/validate"
)

// appContainer holds the shared dependencies of every command. It is filled
// in by the root command once flags and config are known.
type appContainer struct {
	Config   *config.Config
	Logger   *logger.Logger
	Catalog  *i18n.Catalog
	History  *services.HistoryStore
	Sessions *services.SessionManager
	Dispatch *dispatch.Dispatcher

	factory services.StoreFactory
	profile string
	output  string
}

func (a *appContainer) init(cfg *config.Config, log *logger.Logger) error {
	catalog, err := i18n.New()
	if err != nil {
		return err
	}
	v, err := validate.New(catalog)
	if err != nil {
		return err
	}

	// Opened even with history disabled: preferences live there too.
	hist, err := services.OpenHistory(services.HistoryOptions{
		Path:            cfg.History.Path,
		Enabled:         cfg.History.Enabled,
		RememberSecrets: cfg.History.RememberSecrets,
		Limit:           cfg.History.Limit,
	}, log)
	if err != nil {
		return err
	}

	if a.factory == nil {
		a.factory = &services.RealStoreFactory{}
	}
	sessions := services.NewSessionManager(a.factory, log)

	a.Config = cfg
	a.Logger = log
	a.Catalog = catalog
	a.History = hist
	a.Sessions = sessions
	a.Dispatch = dispatch.New(dispatch.Deps{
		Sessions: sessions,
		Explorer: explorer.New(explorer.Options{
			ShareExpiry: cfg.Share.DefaultExpiry,
			Logger:      log,
		}),
		History:   hist,
		Validator: v,
		Logger:    log,
	})
	return nil
}

// Close releases the history database.
func (a *appContainer) Close() error {
	if a.History == nil {
		return nil
	}
	return a.History.Close()
}

// connectTimeout bounds the credential check of one-shot commands.
const connectTimeout = 30 * time.Second

// session connects with --profile, or with the connection settings from
// flags, environment and config file.
func (a *appContainer) session(ctx context.Context) (*services.Session, error) {
	c := a.Config.Connection
	req := dispatch.Connect{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Region:    c.Region,
		PathStyle: c.PathStyle,
	}
	if a.profile != "" {
		req = dispatch.Connect{ProfileID: a.profile, SecretKey: c.SecretKey}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	res, err := a.Dispatch.Connect(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}
