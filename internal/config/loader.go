package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path on top of the defaults, loads .env if
// present, and applies AUCTIONSYNC_* and PORT overrides. A missing file is
// not an error. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LogLevel, "AUCTIONSYNC_LOG_LEVEL")

	// ── Remote ──
	setStr(&cfg.Remote.LotsURL, "AUCTIONSYNC_REMOTE_LOTS_URL")
	setStr(&cfg.Remote.BidURL, "AUCTIONSYNC_REMOTE_BID_URL")
	setStr(&cfg.Remote.AutoBidURL, "AUCTIONSYNC_REMOTE_AUTOBID_URL")
	setStr(&cfg.Remote.AdminURL, "AUCTIONSYNC_REMOTE_ADMIN_URL")
	setStr(&cfg.Remote.VisitURL, "AUCTIONSYNC_REMOTE_VISIT_URL")
	setDuration(&cfg.Remote.RequestTimeout, "AUCTIONSYNC_REMOTE_REQUEST_TIMEOUT")

	// ── Sync ──
	setDuration(&cfg.Sync.ListInterval, "AUCTIONSYNC_SYNC_LIST_INTERVAL")
	setDuration(&cfg.Sync.DetailInterval, "AUCTIONSYNC_SYNC_DETAIL_INTERVAL")
	setBool(&cfg.Sync.SequenceGuard, "AUCTIONSYNC_SYNC_SEQUENCE_GUARD")

	// ── Viewer ──
	setStr(&cfg.Viewer.ID, "AUCTIONSYNC_VIEWER_ID")
	setStr(&cfg.Viewer.Name, "AUCTIONSYNC_VIEWER_NAME")
	setStr(&cfg.Viewer.Avatar, "AUCTIONSYNC_VIEWER_AVATAR")
	setBool(&cfg.Viewer.IsAdmin, "AUCTIONSYNC_VIEWER_IS_ADMIN")

	// ── Display ──
	setStr(&cfg.Display.ProfileBaseURL, "AUCTIONSYNC_DISPLAY_PROFILE_BASE_URL")
	setInt(&cfg.Display.RecentBidsLimit, "AUCTIONSYNC_DISPLAY_RECENT_BIDS_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.BridgeURL, "AUCTIONSYNC_NOTIFY_BRIDGE_URL")
	setDuration(&cfg.Notify.Timeout, "AUCTIONSYNC_NOTIFY_TIMEOUT")
	setStr(&cfg.Notify.WinTitle, "AUCTIONSYNC_NOTIFY_WIN_TITLE")
	setStr(&cfg.Notify.ButtonText, "AUCTIONSYNC_NOTIFY_BUTTON_TEXT")

	// ── Server ──
	setInt(&cfg.Server.Port, "AUCTIONSYNC_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT") // platform convention, wins over the prefixed key
	setStringSlice(&cfg.Server.CORSOrigins, "AUCTIONSYNC_SERVER_CORS_ORIGINS")

	// ── Messages ──
	setStr(&cfg.Messages.NetworkError, "AUCTIONSYNC_MESSAGES_NETWORK_ERROR")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		*dst = cleaned
	}
}
