package config

import (
	"time"

	"github.com/raftmodding/discord-notification-service/internal/announce"
	"github.com/raftmodding/discord-notification-service/internal/discord"
	"github.com/raftmodding/discord-notification-service/pkg/config"
)

// BosunConfig holds all configuration for the Bosun announcement service.
// Required vars cause the service to fail at startup when missing. Optional
// vars have sensible defaults or disable features when empty.
type BosunConfig struct {
	// HTTP surface
	Port                   string
	WebhookToken           string
	WebhookRateLimitPerMin int // 0 disables rate limiting

	// Discord API
	DiscordBotToken string
	DiscordAPIURL   string

	// Announcement targets per release category
	Channels announce.Channels

	// Role mention cooldown shared by all categories
	MentionCooldown time.Duration

	// Optional webhook delivery deduplication (empty disables)
	RedisAddr string
}

// LoadBosunConfig loads configuration from environment variables.
// Call this after config.LoadEnv() has been called.
func LoadBosunConfig() *BosunConfig {
	launcher := loadChannel("LAUNCHER", "RML Launcher")
	launcher.DownloadURL = config.GetEnv("LAUNCHER_DOWNLOAD_URL", "")

	return &BosunConfig{
		Port:                   config.GetEnv("BOSUN_PORT", "18020"),
		WebhookToken:           config.RequireEnv("WEBHOOK_TOKEN"),
		WebhookRateLimitPerMin: config.GetEnvInt("WEBHOOK_RATE_LIMIT_PER_MIN", 120),

		DiscordBotToken: config.RequireEnv("DISCORD_BOT_TOKEN"),
		DiscordAPIURL:   config.GetEnv("DISCORD_API_URL", discord.DefaultBaseURL),

		Channels: announce.Channels{
			Mod:      loadChannel("MOD", "RaftModding"),
			Launcher: launcher,
			Loader:   loadChannel("LOADER", "Raft Mod Loader"),
		},

		MentionCooldown: time.Duration(config.GetEnvInt("MENTION_COOLDOWN_MS", 3600000)) * time.Millisecond,

		RedisAddr: config.GetEnv("REDIS_ADDR", ""),
	}
}

// loadChannel reads one category's announcement target. The channel ID is
// required; the role ID is optional and disables mentions when unset.
func loadChannel(prefix, defaultName string) announce.ChannelConfig {
	return announce.ChannelConfig{
		ChannelID:   config.RequireEnv(prefix + "_CHANNEL_ID"),
		RoleID:      config.GetEnv(prefix+"_ROLE_ID", ""),
		DisplayName: config.GetEnv(prefix+"_DISPLAY_NAME", defaultName),
		LogoURL:     config.GetEnv(prefix+"_LOGO_URL", ""),
	}
}
