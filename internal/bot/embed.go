package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/kurumi/pkg/util"
)

const (
	ColorDefault = 0x5865F2
	ColorError   = 0xED4245
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorPing    = 0x7289DA
)

// Embed limits enforced by the platform.
const (
	maxDescription = 4096
	maxTitle       = 256
)

// NewEmbed starts an embed with the given color, title and description.
// Empty title is omitted.
func NewEmbed(color int, title, description string) *embed.Embed {
	e := embed.NewEmbed().SetColor(color)
	if title != "" {
		e = e.SetTitle(util.Truncate(title, maxTitle-3))
	}
	if description != "" {
		e = e.SetDescription(util.Truncate(description, maxDescription-3))
	}
	return e
}

func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed(ColorDefault, title, description).MessageEmbed
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed(ColorSuccess, "✅ "+title, description).MessageEmbed
}

func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed(ColorError, "❌ "+title, description).MessageEmbed
}

func WarningEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed(ColorWarning, "⚠️ "+title, description).MessageEmbed
}

// WithRequester stamps the embed with a "Requested by" footer and the
// current time.
func WithRequester(e *discordgo.MessageEmbed, u *discordgo.User, now time.Time) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	if u != nil {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + userTag(u),
			IconURL: u.AvatarURL(""),
		}
	}
	e.Timestamp = now.UTC().Format(time.RFC3339)
	return e
}

func userTag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

