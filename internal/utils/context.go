// Package utils provides shared utility functions and constants
package utils

// ContextKeySession is the echo context key holding the *services.Session.
const ContextKeySession = "session"

// ContextKeyLocalizer is the echo context key holding the request's *i18n.Localizer.
const ContextKeyLocalizer = "i18n"

// ContextKeyPreferences is the echo context key holding services.Preferences.
const ContextKeyPreferences = "prefs"

// CookieName is the name of the sealed session cookie
const CookieName = "IronShelf"
