// Package dispatch is the command layer between the interfaces (web UI,
// CLI) and the explorer. Each intent is a request struct; the dispatcher
// validates it, runs it against the session it is given and returns a
// typed result.
package dispatch

import (
	"context"

	"golang.org/x/text/language"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/logger"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/validate"
)

// Deps are the collaborators of a Dispatcher. History may be nil, in
// which case nothing is remembered and preferences are the defaults.
type Deps struct {
	Sessions  *services.SessionManager
	Explorer  *explorer.Explorer
	History   *services.HistoryStore
	Validator *validate.Validator
	Logger    *logger.Logger
}

type Dispatcher struct {
	sessions *services.SessionManager
	explorer *explorer.Explorer
	history  *services.HistoryStore
	validate *validate.Validator
	log      *logger.Logger
}

func New(d Deps) *Dispatcher {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &Dispatcher{
		sessions: d.Sessions,
		explorer: d.Explorer,
		history:  d.History,
		validate: d.Validator,
		log:      d.Logger.With().Str("component", "dispatch").Logger(),
	}
}

// Sessions exposes the session manager for cookie lookups.
func (d *Dispatcher) Sessions() *services.SessionManager { return d.sessions }

// run validates req, logs the intent and logs fn's failure.
func (d *Dispatcher) run(ctx context.Context, intent string, req any, fn func(ctx context.Context) error) error {
	d.log.Debug().Str("intent", intent).Msg("dispatch")

	if req != nil {
		if err := d.validate.ValidateIn(i18n.LanguageFrom(ctx), req); err != nil {
			d.log.Debug().Str("intent", intent).Err(err).Msg("rejected")
			return err
		}
	}

	ctx = explorer.WithLocale(ctx, language.Make(i18n.LanguageFrom(ctx)))
	if err := fn(ctx); err != nil {
		d.log.Error().Str("intent", intent).Str("kind", errs.KindOf(err).String()).
			Str("code", errs.CodeOf(err)).Err(err).Msg("failed")
		return err
	}
	return nil
}

// requireSession rejects calls made without a live session.
func (d *Dispatcher) requireSession(sess *services.Session) error {
	if sess == nil || sess.Client == nil {
		return errs.New(errs.KindPermissionDenied, "not connected")
	}
	return nil
}

// session runs fn with a required session.
func (d *Dispatcher) session(ctx context.Context, sess *services.Session, intent string, req any, fn func(ctx context.Context) error) error {
	if err := d.requireSession(sess); err != nil {
		return err
	}
	return d.run(ctx, intent, req, fn)
}
