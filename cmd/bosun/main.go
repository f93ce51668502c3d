package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/raftmodding/discord-notification-service/internal/announce"
	bosunconfig "github.com/raftmodding/discord-notification-service/internal/config"
	"github.com/raftmodding/discord-notification-service/internal/cooldown"
	"github.com/raftmodding/discord-notification-service/internal/discord"
	"github.com/raftmodding/discord-notification-service/internal/handlers"
	"github.com/raftmodding/discord-notification-service/pkg/config"
	"github.com/raftmodding/discord-notification-service/pkg/logging"
	"github.com/raftmodding/discord-notification-service/pkg/middleware"
	"github.com/raftmodding/discord-notification-service/pkg/monitoring"
	"github.com/raftmodding/discord-notification-service/pkg/server"
	"github.com/raftmodding/discord-notification-service/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("bosun")
	config.LoadEnv(logger)

	info := version.GetInfo()
	logger.WithFields(logrus.Fields{
		"version":    info.Version,
		"commit":     version.GetShortCommit(),
		"build_date": info.BuildDate,
	}).Info("Starting Bosun (Release Announcement Service)")

	cfg := bosunconfig.LoadBosunConfig()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("bosun", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("bosun", version.Version, version.GitCommit)

	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DISCORD_BOT_TOKEN":   cfg.DiscordBotToken,
		"MOD_CHANNEL_ID":      cfg.Channels.Mod.ChannelID,
		"LAUNCHER_CHANNEL_ID": cfg.Channels.Launcher.ChannelID,
		"LOADER_CHANNEL_ID":   cfg.Channels.Loader.ChannelID,
	}))
	healthChecker.AddCheck("discord", monitoring.HTTPServiceHealthCheck("discord", cfg.DiscordAPIURL+"/gateway"))

	// Create handler metrics
	handlerMetrics := &handlers.Metrics{
		WebhooksReceived:    metricsCollector.NewCounter("webhooks_received_total", "Release webhooks received", []string{"category", "status"}),
		AnnouncementsSent:   metricsCollector.NewCounter("announcements_sent_total", "Announcements delivered to Discord", []string{"category", "mentioned"}),
		MentionsSuppressed:  metricsCollector.NewCounter("mentions_suppressed_total", "Role mentions suppressed by cooldown", []string{"category"}),
		DiscordSendFailures: metricsCollector.NewCounter("discord_send_failures_total", "Failed Discord deliveries", []string{"category"}),
	}

	// Discord client and announcement pipeline
	discordClient := discord.NewClient(discord.Config{
		BaseURL:  cfg.DiscordAPIURL,
		BotToken: cfg.DiscordBotToken,
	})
	tracker := cooldown.NewTracker(cfg.MentionCooldown)
	announcer := announce.New(discordClient, tracker, cfg.Channels)

	redisClient := connectRedis(cfg.RedisAddr, logger)

	// Initialize HTTP handlers
	handlers.Init(handlers.Dependencies{
		Logger:    logger,
		Metrics:   handlerMetrics,
		Announcer: announcer,
		Redis:     redisClient,
	})

	// Setup HTTP router (SetupServiceRouter adds /health and /metrics)
	router := server.SetupServiceRouter(logger, "bosun", healthChecker, metricsCollector)

	// Webhook routes, authenticated with the shared webhook token
	webhooks := router.Group("/webhooks")
	webhooks.Use(middleware.ServiceAuthMiddleware(cfg.WebhookToken))
	{
		if cfg.WebhookRateLimitPerMin > 0 {
			limiter := handlers.NewWebhookRateLimiter(cfg.WebhookRateLimitPerMin, time.Minute, 10*time.Minute)
			webhooks.Use(handlers.WebhookRateLimitMiddleware(limiter))
		}
		webhooks.POST("/releases/:category", handlers.HandleReleaseWebhook)
	}

	// Health endpoint for discord connectivity
	router.GET("/health/discord", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := discordClient.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Discord health check failed")
			c.JSON(503, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("bosun", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}
}

// connectRedis returns nil when the address is unset or unreachable, which
// disables webhook delivery deduplication.
func connectRedis(addr string, logger logging.Logger) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis; webhook deduplication disabled")
		return nil
	}
	return client
}
