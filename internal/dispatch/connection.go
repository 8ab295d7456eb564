package dispatch

import (
	"context"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

// Connect validates the credentials against the store and makes the new
// session the active one. The connection is then recorded in history;
// failing to record it is only logged.
func (d *Dispatcher) Connect(ctx context.Context, req Connect) (ConnectResult, error) {
	var res ConnectResult
	err := d.run(ctx, "connect", req, func(ctx context.Context) error {
		conn, err := d.resolveConnection(ctx, req)
		if err != nil {
			return err
		}

		sess, err := d.sessions.Connect(ctx, conn)
		if err != nil {
			return err
		}
		res.Session = sess

		if d.history != nil {
			p, err := d.history.Record(ctx, conn)
			if err != nil {
				d.log.Warn().Err(err).Msg("could not record connection")
			} else if d.history.Enabled() {
				res.Profile = &p
			}
		}
		return nil
	})
	return res, err
}

func (d *Dispatcher) resolveConnection(ctx context.Context, req Connect) (services.Connection, error) {
	conn := services.Connection{
		Endpoint:  req.Endpoint,
		AccessKey: req.AccessKey,
		SecretKey: req.SecretKey,
		Region:    req.Region,
		PathStyle: req.PathStyle,
	}
	if req.ProfileID == "" {
		if conn.SecretKey == "" {
			return conn, errs.New(errs.KindInvalidInput, "secret key is required")
		}
		return conn, nil
	}

	if d.history == nil {
		return conn, errs.New(errs.KindNotFound, "connection history is not available")
	}
	p, err := d.history.Get(ctx, req.ProfileID)
	if err != nil {
		return conn, err
	}

	saved := p.Connection()
	if conn.SecretKey != "" {
		saved.SecretKey = conn.SecretKey
	}
	if saved.SecretKey == "" {
		return conn, errs.New(errs.KindInvalidInput, "secret key is required for this saved connection")
	}
	return saved, nil
}

// Disconnect drops the active session.
func (d *Dispatcher) Disconnect(ctx context.Context) {
	_ = d.run(ctx, "disconnect", nil, func(context.Context) error {
		d.sessions.Disconnect()
		return nil
	})
}

// History lists saved connections, most recent first.
func (d *Dispatcher) History(ctx context.Context) ([]services.Profile, error) {
	var out []services.Profile
	err := d.run(ctx, "history", nil, func(ctx context.Context) error {
		if d.history == nil {
			return nil
		}
		var err error
		out, err = d.history.List(ctx)
		return err
	})
	return out, err
}

// HistoryEnabled reports whether connections are being recorded.
func (d *Dispatcher) HistoryEnabled() bool {
	return d.history != nil && d.history.Enabled()
}

// ForgetConnection deletes one saved connection, or all of them.
func (d *Dispatcher) ForgetConnection(ctx context.Context, req ForgetConnection) error {
	return d.run(ctx, "forget_connection", req, func(ctx context.Context) error {
		if d.history == nil {
			return nil
		}
		if req.All {
			return d.history.Clear(ctx)
		}
		return d.history.Delete(ctx, req.ID)
	})
}

// Preferences returns the saved UI preferences.
func (d *Dispatcher) Preferences(ctx context.Context) (services.Preferences, error) {
	prefs := services.DefaultPreferences()
	err := d.run(ctx, "preferences", nil, func(ctx context.Context) error {
		if d.history == nil {
			return nil
		}
		var err error
		prefs, err = d.history.Preferences(ctx)
		return err
	})
	return prefs, err
}

// SetPreference saves one UI preference.
func (d *Dispatcher) SetPreference(ctx context.Context, req SetPreference) error {
	return d.run(ctx, "set_preference", req, func(ctx context.Context) error {
		if err := services.ValidatePreference(req.Key, req.Value); err != nil {
			return err
		}
		if d.history == nil {
			return nil
		}
		return d.history.SetPreference(ctx, req.Key, req.Value)
	})
}
