// Package announce turns validated release events into Discord
// announcements and delivers them with a per-category mention cooldown.
package announce

import (
	"fmt"

	"github.com/raftmodding/discord-notification-service/internal/discord"
	"github.com/raftmodding/discord-notification-service/internal/release"
)

// Embed accent colors per category.
const (
	colorMod      = 0x3498DB
	colorLauncher = 0x2ECC71
	colorLoader   = 0xE67E22
)

// ChannelConfig is the static announcement target for one category.
type ChannelConfig struct {
	ChannelID   string
	RoleID      string // empty disables role mentions for the category
	DisplayName string
	LogoURL     string
	DownloadURL string // launcher only: static download link
}

// Channels holds the announcement targets for all three categories.
type Channels struct {
	Mod      ChannelConfig
	Launcher ChannelConfig
	Loader   ChannelConfig
}

// For returns the target for the given category.
func (ch Channels) For(cat release.Category) ChannelConfig {
	switch cat {
	case release.CategoryMod:
		return ch.Mod
	case release.CategoryLauncher:
		return ch.Launcher
	case release.CategoryLoader:
		return ch.Loader
	}
	return ChannelConfig{}
}

// Notification is a composed announcement ready to send.
type Notification struct {
	ChannelID string
	Message   discord.Message
	// Mentioned reports whether Message carries a live role mention.
	Mentioned bool
}

// Compose renders the announcement for a validated event. It is pure: the
// same target, event and mention decision always yield the same
// notification. The role is mentioned only when the category has one
// configured and the cooldown decision allows it; otherwise the message
// carries no mention at all.
func Compose(cfg ChannelConfig, ev release.Event, mention bool) Notification {
	var embed discord.Embed
	switch ev := ev.(type) {
	case *release.ModRelease:
		embed = modEmbed(cfg, ev)
	case *release.LauncherRelease:
		embed = launcherEmbed(cfg, ev)
	case *release.LoaderRelease:
		embed = loaderEmbed(cfg, ev)
	}

	mentioned := mention && cfg.RoleID != ""
	msg := discord.Message{
		Embeds:          []discord.Embed{embed},
		AllowedMentions: &discord.AllowedMentions{Parse: []string{}},
	}
	if mentioned {
		msg.Content = fmt.Sprintf("<@&%s>", cfg.RoleID)
		msg.AllowedMentions.Roles = []string{cfg.RoleID}
	}

	return Notification{ChannelID: cfg.ChannelID, Message: msg, Mentioned: mentioned}
}

func modEmbed(cfg ChannelConfig, ev *release.ModRelease) discord.Embed {
	headline := fmt.Sprintf("Update %s of %s is out!", ev.Version, ev.Title)
	if ev.Initial {
		headline = fmt.Sprintf("%s has been released!", ev.Title)
	}

	return discord.Embed{
		Title:       headline,
		Description: ev.Description,
		URL:         ev.ModURL,
		Color:       colorMod,
		Author:      &discord.EmbedAuthor{Name: ev.AuthorName, URL: ev.AuthorURL},
		Thumbnail:   &discord.EmbedImage{URL: ev.IconURL},
		Image:       &discord.EmbedImage{URL: ev.BannerURL},
		Fields: []discord.EmbedField{
			{Name: "Version", Value: ev.Version, Inline: true},
			{Name: "Changelog", Value: ev.Changelog},
		},
		Footer: footer(cfg),
	}
}

func launcherEmbed(cfg ChannelConfig, ev *release.LauncherRelease) discord.Embed {
	fields := []discord.EmbedField{
		{Name: "Version", Value: ev.Version, Inline: true},
		{Name: "Changelog", Value: ev.Changelog},
	}
	if cfg.DownloadURL != "" {
		fields = append(fields, discord.EmbedField{Name: "Download", Value: cfg.DownloadURL})
	}

	return discord.Embed{
		Title:       fmt.Sprintf("%s %s has been released!", ev.Name, ev.Version),
		Description: ev.Description,
		URL:         cfg.DownloadURL,
		Color:       colorLauncher,
		Thumbnail:   &discord.EmbedImage{URL: ev.IconURL},
		Fields:      fields,
		Footer:      footer(cfg),
	}
}

func loaderEmbed(cfg ChannelConfig, ev *release.LoaderRelease) discord.Embed {
	return discord.Embed{
		Title:       fmt.Sprintf("%s %s has been released!", ev.Name, ev.Version),
		Description: ev.Description,
		URL:         ev.SourceURL,
		Color:       colorLoader,
		Thumbnail:   &discord.EmbedImage{URL: ev.IconURL},
		Fields: []discord.EmbedField{
			{Name: "Version", Value: ev.Version, Inline: true},
			{Name: "Source", Value: ev.SourceURL},
		},
		Footer: footer(cfg),
	}
}

func footer(cfg ChannelConfig) *discord.EmbedFooter {
	if cfg.DisplayName == "" && cfg.LogoURL == "" {
		return nil
	}
	return &discord.EmbedFooter{Text: cfg.DisplayName, IconURL: cfg.LogoURL}
}
