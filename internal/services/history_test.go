package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/errs"
)

func openTestHistory(t *testing.T, opts HistoryOptions) *HistoryStore {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "nested", "history.db")
	}
	h, err := OpenHistory(opts, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	h.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return h
}

func conn(i int) Connection {
	return Connection{
		Endpoint:  fmt.Sprintf("host%d:9000", i),
		AccessKey: "ak",
		SecretKey: "sk",
		Region:    "us-east-1",
		PathStyle: true,
	}
}

func TestHistory_KeepsFiveMostRecent(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: true})

	for i := 1; i <= 7; i++ {
		_, err := h.Record(t.Context(), conn(i))
		require.NoError(t, err)
	}

	list, err := h.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, MaxProfiles)

	var endpoints []string
	for _, p := range list {
		endpoints = append(endpoints, p.Endpoint)
	}
	assert.Equal(t, []string{"host7:9000", "host6:9000", "host5:9000", "host4:9000", "host3:9000"}, endpoints)
}

func TestHistory_DeduplicatesByEndpointAndAccessKey(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: true})

	first, err := h.Record(t.Context(), conn(1))
	require.NoError(t, err)
	_, err = h.Record(t.Context(), conn(2))
	require.NoError(t, err)

	again := conn(1)
	again.Region = "eu-west-1"
	second, err := h.Record(t.Context(), again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "profile keeps its identity")

	list, err := h.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "host1:9000", list[0].Endpoint)
	assert.Equal(t, "eu-west-1", list[0].Region)

	// A different access key on the same endpoint is a separate profile.
	other := conn(1)
	other.AccessKey = "other"
	_, err = h.Record(t.Context(), other)
	require.NoError(t, err)
	list, err = h.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestHistory_SecretsDroppedUnlessRemembered(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: true})
	p, err := h.Record(t.Context(), conn(1))
	require.NoError(t, err)

	got, err := h.Get(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SecretKey)
	assert.False(t, got.HasSecret())

	remembering := openTestHistory(t, HistoryOptions{Enabled: true, RememberSecrets: true})
	p, err = remembering.Record(t.Context(), conn(1))
	require.NoError(t, err)
	got, err = remembering.Get(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "sk", got.SecretKey)
	assert.Equal(t, conn(1), got.Connection())
}

func TestHistory_DisabledRecordsNothing(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: false})

	_, err := h.Record(t.Context(), conn(1))
	require.NoError(t, err)

	list, err := h.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, h.Enabled())
}

func TestHistory_DeleteAndClear(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: true})
	a, err := h.Record(t.Context(), conn(1))
	require.NoError(t, err)
	_, err = h.Record(t.Context(), conn(2))
	require.NoError(t, err)

	require.NoError(t, h.Delete(t.Context(), a.ID))
	require.NoError(t, h.Delete(t.Context(), "unknown"))

	_, err = h.Get(t.Context(), a.ID)
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, h.Clear(t.Context()))
	list, err := h.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHistory_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h := openTestHistory(t, HistoryOptions{Path: path, Enabled: true})
	_, err := h.Record(t.Context(), conn(1))
	require.NoError(t, err)
	require.NoError(t, h.SetPreference(t.Context(), PrefTheme, ThemeDark))
	require.NoError(t, h.Close())

	reopened := openTestHistory(t, HistoryOptions{Path: path, Enabled: true})
	list, err := reopened.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	prefs, err := reopened.Preferences(t.Context())
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, prefs.Theme)
}

func TestHistory_Preferences(t *testing.T) {
	h := openTestHistory(t, HistoryOptions{Enabled: true})

	prefs, err := h.Preferences(t.Context())
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), prefs)

	require.NoError(t, h.SetPreference(t.Context(), PrefLanguage, LanguagePersian))
	require.NoError(t, h.SetPreference(t.Context(), PrefTheme, ThemeDark))
	require.NoError(t, h.SetPreference(t.Context(), PrefTheme, ThemeLight))

	prefs, err = h.Preferences(t.Context())
	require.NoError(t, err)
	assert.Equal(t, Preferences{Theme: ThemeLight, Language: LanguagePersian}, prefs)
}

func TestValidatePreference(t *testing.T) {
	tests := []struct {
		key, value string
		ok         bool
	}{
		{PrefTheme, ThemeLight, true},
		{PrefTheme, ThemeDark, true},
		{PrefTheme, "blue", false},
		{PrefLanguage, LanguageEnglish, true},
		{PrefLanguage, LanguagePersian, true},
		{PrefLanguage, "de", false},
		{"fontSize", "12", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := ValidatePreference(tt.key, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errs.IsInvalidInput(err))
			}
		})
	}
}
