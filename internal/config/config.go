// Package config defines the daemon configuration: built-in defaults, an
// optional TOML file, an optional .env file and AUCTIONSYNC_* overrides.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"auction-sync/internal/models"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Remote   RemoteConfig   `toml:"remote"`
	Sync     SyncConfig     `toml:"sync"`
	Viewer   ViewerConfig   `toml:"viewer"`
	Display  DisplayConfig  `toml:"display"`
	Notify   NotifyConfig   `toml:"notify"`
	Server   ServerConfig   `toml:"server"`
	Messages MessagesConfig `toml:"messages"`
}

// RemoteConfig holds the backend endpoints.
type RemoteConfig struct {
	LotsURL        string   `toml:"lots_url"`
	BidURL         string   `toml:"bid_url"`
	AutoBidURL     string   `toml:"autobid_url"`
	AdminURL       string   `toml:"admin_url"`
	VisitURL       string   `toml:"visit_url"`
	RequestTimeout duration `toml:"request_timeout"`
}

// SyncConfig holds the poll periods.
type SyncConfig struct {
	ListInterval   duration `toml:"list_interval"`
	DetailInterval duration `toml:"detail_interval"`
	SequenceGuard  bool     `toml:"sequence_guard"`
}

// ViewerConfig is the identity a session starts with.
type ViewerConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Avatar  string `toml:"avatar"`
	IsAdmin bool   `toml:"is_admin"`
}

// DisplayConfig tunes the viewer projections.
type DisplayConfig struct {
	ProfileBaseURL  string `toml:"profile_base_url"`
	RecentBidsLimit int    `toml:"recent_bids_limit"`
}

// NotifyConfig holds win notification delivery.
type NotifyConfig struct {
	BridgeURL  string   `toml:"bridge_url"`
	Timeout    duration `toml:"timeout"`
	WinTitle   string   `toml:"win_title"`
	WinMessage string   `toml:"win_message"`
	ButtonText string   `toml:"button_text"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// MessagesConfig holds user-facing texts.
type MessagesConfig struct {
	NetworkError string `toml:"network_error"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "15s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Remote: RemoteConfig{
			LotsURL:        "https://functions.poehali.dev/a4ff5c7f-b025-48d2-bb94-cc014f6d2568",
			BidURL:         "https://functions.poehali.dev/ba11208b-97ba-4756-b7b9-eba826787166",
			AdminURL:       "https://functions.poehali.dev/c80458b7-040f-4c1e-afc7-9418aa34e00f",
			RequestTimeout: duration{10 * time.Second},
		},
		Sync: SyncConfig{
			ListInterval:   duration{15 * time.Second},
			DetailInterval: duration{5 * time.Second},
		},
		Viewer: ViewerConfig{
			ID:     models.GuestID,
			Name:   "Гость",
			Avatar: "??",
		},
		Display: DisplayConfig{
			ProfileBaseURL:  "https://vk.com/",
			RecentBidsLimit: 3,
		},
		Notify: NotifyConfig{
			Timeout:    duration{5 * time.Second},
			WinTitle:   "🏆 Вы победили!",
			WinMessage: "Поздравляем! Вы выиграли лот «%s» за %s. Свяжитесь с организатором для получения приза.",
			ButtonText: "Отлично!",
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Messages: MessagesConfig{
			NetworkError: "Ошибка сети. Попробуйте ещё раз.",
		},
	}
}

// ViewerIdentity returns the configured session viewer.
func (c *Config) ViewerIdentity() models.Viewer {
	return models.Viewer{
		ID:      c.Viewer.ID,
		Name:    c.Viewer.Name,
		Avatar:  c.Viewer.Avatar,
		IsAdmin: c.Viewer.IsAdmin,
	}
}

// Validate returns one error listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Remote
	for name, raw := range map[string]string{
		"lots_url":  c.Remote.LotsURL,
		"bid_url":   c.Remote.BidURL,
		"admin_url": c.Remote.AdminURL,
	} {
		if raw == "" {
			errs = append(errs, fmt.Sprintf("remote: %s must not be empty", name))
			continue
		}
		if !validURL(raw) {
			errs = append(errs, fmt.Sprintf("remote: %s is not an absolute http(s) url: %q", name, raw))
		}
	}
	for name, raw := range map[string]string{
		"autobid_url": c.Remote.AutoBidURL,
		"visit_url":   c.Remote.VisitURL,
	} {
		if raw != "" && !validURL(raw) {
			errs = append(errs, fmt.Sprintf("remote: %s is not an absolute http(s) url: %q", name, raw))
		}
	}
	if c.Remote.RequestTimeout.Duration <= 0 {
		errs = append(errs, "remote: request_timeout must be > 0")
	}

	// Sync
	if c.Sync.ListInterval.Duration < time.Second {
		errs = append(errs, "sync: list_interval must be >= 1s")
	}
	if c.Sync.DetailInterval.Duration < time.Second {
		errs = append(errs, "sync: detail_interval must be >= 1s")
	}

	// Viewer
	if strings.TrimSpace(c.Viewer.ID) == "" {
		errs = append(errs, "viewer: id must not be empty (use \"guest\")")
	}

	// Display
	if c.Display.RecentBidsLimit < 0 {
		errs = append(errs, "display: recent_bids_limit must be >= 0")
	}

	// Notify
	if c.Notify.BridgeURL != "" && !validURL(c.Notify.BridgeURL) {
		errs = append(errs, fmt.Sprintf("notify: bridge_url is not an absolute http(s) url: %q", c.Notify.BridgeURL))
	}
	if c.Notify.Timeout.Duration <= 0 {
		errs = append(errs, "notify: timeout must be > 0")
	}
	if strings.Count(c.Notify.WinMessage, "%s") != 2 {
		errs = append(errs, "notify: win_message must contain exactly two %s verbs (title, price)")
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %d problem(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
