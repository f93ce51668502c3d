package handlers

import (
	"context"

	"github.com/raftmodding/discord-notification-service/internal/announce"
	"github.com/raftmodding/discord-notification-service/internal/release"
	"github.com/raftmodding/discord-notification-service/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Announcer runs the announcement pipeline for one raw webhook payload.
type Announcer interface {
	Announce(ctx context.Context, cat release.Category, payload []byte) (*announce.Receipt, error)
}

// Metrics holds Prometheus metrics for the handlers
type Metrics struct {
	WebhooksReceived    *prometheus.CounterVec
	AnnouncementsSent   *prometheus.CounterVec
	MentionsSuppressed  *prometheus.CounterVec
	DiscordSendFailures *prometheus.CounterVec
}

// Dependencies holds all external dependencies for handlers
type Dependencies struct {
	Logger    logging.Logger
	Metrics   *Metrics
	Announcer Announcer
	Redis     *redis.Client
}

var deps Dependencies

// Init initializes the handlers with dependencies
func Init(d Dependencies) {
	deps = d
	deps.Logger.Info("Handlers initialized")
}
