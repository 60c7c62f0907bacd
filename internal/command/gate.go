package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/pkg/cmd"
)

// authorize checks owner-only and permission requirements of c for the
// author of msg. Commands without DiscordMeta are open to everyone.
func (r *Router) authorize(ctx context.Context, client bot.Client, c cmd.Command, name string, msg *discordgo.Message) error {
	meta, ok := cmd.As[DiscordMeta](c)
	if !ok {
		return nil
	}

	if meta.OwnerOnly() && !r.cfg.IsOwner(msg.Author.ID) {
		return cmd.ErrMissingPermissions(name, 0, "owner only")
	}

	required := meta.UserPermissions()
	if required == 0 {
		return nil
	}
	if msg.GuildID == "" {
		return cmd.ErrMissingPermissions(name, required, "not available in direct messages")
	}

	perms, err := client.MemberPermissions(ctx, msg.GuildID, msg.ChannelID, msg.Author.ID)
	if err != nil {
		if cmd.IsKind(err, cmd.KindUpstream) {
			return err
		}
		return cmd.UpstreamError("member permissions", err)
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	if perms&required != required {
		return cmd.ErrMissingPermissions(name, required, "missing required permissions")
	}
	return nil
}
