package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/raftmodding/discord-notification-service/internal/release"

	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes caps release webhook payloads at 1 MiB.
const maxWebhookBodyBytes int64 = 1 << 20

// dedupTTL bounds how long an announced delivery ID blocks redelivery.
const dedupTTL = 24 * time.Hour

// HandleReleaseWebhook ingests one release event for the category in the URL
// and announces it to Discord. Validation failures map to 400, delivery
// failures to 502; a failed delivery is never retried here, the sender is
// expected to redeliver the webhook.
func HandleReleaseWebhook(c *gin.Context) {
	cat, ok := release.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}

	if c.Request.ContentLength > maxWebhookBodyBytes {
		deps.Metrics.WebhooksReceived.WithLabelValues(string(cat), "too_large").Inc()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		deps.Logger.WithError(err).Warn("Failed to read release webhook body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if int64(len(body)) > maxWebhookBodyBytes {
		deps.Metrics.WebhooksReceived.WithLabelValues(string(cat), "too_large").Inc()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	deliveryID := c.GetHeader("X-Delivery-ID")
	if !claimDelivery(c, cat, deliveryID) {
		deps.Metrics.WebhooksReceived.WithLabelValues(string(cat), "duplicate").Inc()
		deps.Logger.WithFields(map[string]interface{}{
			"category":    string(cat),
			"delivery_id": deliveryID,
		}).Info("Ignoring duplicate webhook delivery")
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	receipt, err := deps.Announcer.Announce(c.Request.Context(), cat, body)
	if err != nil {
		// Nothing was announced; free the delivery ID so a redelivery is
		// processed instead of deduplicated.
		releaseDeliveryClaim(c, cat, deliveryID)

		var verr *release.ValidationError
		if errors.As(err, &verr) {
			deps.Metrics.WebhooksReceived.WithLabelValues(string(cat), "invalid").Inc()
			deps.Logger.WithFields(map[string]interface{}{
				"category": string(cat),
				"field":    verr.Field,
				"kind":     verr.Kind,
			}).Warn("Rejected release webhook")
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "rejected",
				"kind":    "validation",
				"field":   verr.Field,
				"message": verr.Message,
			})
			return
		}

		deps.Metrics.DiscordSendFailures.WithLabelValues(string(cat)).Inc()
		deps.Logger.WithError(err).WithField("category", string(cat)).Error("Failed to deliver announcement")
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "rejected",
			"kind":    "delivery",
			"message": "failed to deliver announcement",
		})
		return
	}

	deps.Metrics.WebhooksReceived.WithLabelValues(string(cat), "accepted").Inc()
	deps.Metrics.AnnouncementsSent.WithLabelValues(string(cat), strconv.FormatBool(receipt.Mentioned)).Inc()
	if receipt.Suppressed {
		deps.Metrics.MentionsSuppressed.WithLabelValues(string(cat)).Inc()
	}

	deps.Logger.WithFields(map[string]interface{}{
		"category":   string(cat),
		"message_id": receipt.MessageID,
		"mentioned":  receipt.Mentioned,
	}).Info("Announced release")

	c.JSON(http.StatusOK, gin.H{"status": "accepted", "mentioned": receipt.Mentioned})
}

// claimDelivery reserves the delivery ID in Redis. A claim only becomes
// permanent once the announce succeeds; releaseDeliveryClaim frees it
// otherwise. Fails open: without Redis, or when Redis errors, every delivery
// is treated as new.
func claimDelivery(c *gin.Context, cat release.Category, deliveryID string) bool {
	if deps.Redis == nil || deliveryID == "" {
		return true
	}
	fresh, err := deps.Redis.SetNX(c.Request.Context(), deliveryKey(cat, deliveryID), "1", dedupTTL).Result()
	if err != nil {
		deps.Logger.WithError(err).Warn("Delivery dedup check failed; treating delivery as new")
		return true
	}
	return fresh
}

// releaseDeliveryClaim drops a claimed delivery ID after a failed announce so
// the sender's redelivery is not mistaken for a duplicate.
func releaseDeliveryClaim(c *gin.Context, cat release.Category, deliveryID string) {
	if deps.Redis == nil || deliveryID == "" {
		return
	}
	if err := deps.Redis.Del(c.Request.Context(), deliveryKey(cat, deliveryID)).Err(); err != nil {
		deps.Logger.WithError(err).Warn("Failed to release delivery claim")
	}
}

func deliveryKey(cat release.Category, deliveryID string) string {
	return fmt.Sprintf("bosun:delivery:%s:%s", cat, deliveryID)
}
