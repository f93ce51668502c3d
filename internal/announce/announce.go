package announce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raftmodding/discord-notification-service/internal/cooldown"
	"github.com/raftmodding/discord-notification-service/internal/discord"
	"github.com/raftmodding/discord-notification-service/internal/release"
)

// Sender delivers a composed message to a Discord channel.
type Sender interface {
	CreateMessage(ctx context.Context, channelID string, msg discord.Message) (*discord.SentMessage, error)
}

// SendError marks a downstream delivery failure. Callers can distinguish it
// from a *release.ValidationError to map the failure to the right response.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send announcement: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Receipt describes a delivered announcement.
type Receipt struct {
	Category  release.Category
	MessageID string
	// Mentioned reports whether the message pinged the category role.
	Mentioned bool
	// Suppressed reports that a configured role was not pinged because the
	// cooldown window was still open.
	Suppressed bool
}

// Announcer runs the full pipeline for a raw webhook payload: validate,
// decide the mention, compose and deliver.
type Announcer struct {
	sender   Sender
	tracker  *cooldown.Tracker
	channels Channels
	locks    map[release.Category]*sync.Mutex
	now      func() time.Time
}

// New builds an Announcer around the given sender and cooldown tracker.
func New(sender Sender, tracker *cooldown.Tracker, channels Channels) *Announcer {
	locks := make(map[release.Category]*sync.Mutex, len(release.Categories()))
	for _, cat := range release.Categories() {
		locks[cat] = &sync.Mutex{}
	}
	return &Announcer{
		sender:   sender,
		tracker:  tracker,
		channels: channels,
		locks:    locks,
		now:      time.Now,
	}
}

// Announce validates the payload for the category and, on success, delivers
// the composed announcement. The mention decision, the send and the mention
// record run under a per-category lock, so concurrent events of the same
// category cannot both claim the mention while other categories proceed
// untouched. The mention is recorded only after the send succeeded; a failed
// send leaves the cooldown window unchanged.
func (a *Announcer) Announce(ctx context.Context, cat release.Category, payload []byte) (*Receipt, error) {
	ev, err := release.Validate(cat, payload)
	if err != nil {
		return nil, err
	}

	cfg := a.channels.For(cat)

	lock := a.locks[cat]
	lock.Lock()
	defer lock.Unlock()

	n := Compose(cfg, ev, a.tracker.ShouldMention(cat, a.now()))
	sent, err := a.sender.CreateMessage(ctx, n.ChannelID, n.Message)
	if err != nil {
		return nil, &SendError{Err: err}
	}
	if n.Mentioned {
		a.tracker.RecordMention(cat, a.now())
	}

	receipt := &Receipt{
		Category:   cat,
		Mentioned:  n.Mentioned,
		Suppressed: cfg.RoleID != "" && !n.Mentioned,
	}
	if sent != nil {
		receipt.MessageID = sent.ID
	}
	return receipt, nil
}
