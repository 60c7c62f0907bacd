package general

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/internal/version"
	"github.com/keshon/kurumi/pkg/cmd"
)

type Help struct{}

func (c *Help) Name() string           { return "help" }
func (c *Help) Description() string    { return "List commands or show details for one" }
func (c *Help) Aliases() []string      { return []string{"h", "commands"} }
func (c *Help) Usage() string          { return "help [command]" }
func (c *Help) Category() string       { return "🕯️ Information" }
func (c *Help) UserPermissions() int64 { return 0 }
func (c *Help) OwnerOnly() bool        { return false }

func (c *Help) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	if len(mc.Args) > 0 {
		token := strings.ToLower(mc.Args[0])
		target, ok := mc.Registry.Resolve(token)
		if !ok {
			_, err := mc.ReplyError(ctx, "Unknown command", fmt.Sprintf("No command named `%s`.", token))
			return err
		}
		_, err := mc.ReplyEmbed(ctx, DetailEmbed(target, mc.Config.Prefix))
		return err
	}

	_, err = mc.ReplyEmbed(ctx, ListEmbed(mc.Registry.List(), mc.Config))
	return err
}

// ListEmbed groups commands by category. Categories follow their configured
// weight; inside a category commands keep registration order. Disabled
// commands are left out.
func ListEmbed(cmds []cmd.Command, cfg *config.Config) *discordgo.MessageEmbed {
	byCategory := map[string][]cmd.Command{}
	var categories []string
	for _, c := range cmds {
		if cfg.IsDisabled(c.Name()) {
			continue
		}
		cat := command.CategoryOf(c)
		if _, seen := byCategory[cat]; !seen {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return config.CategoryWeight(categories[i]) < config.CategoryWeight(categories[j])
	})

	e := bot.NewEmbed(bot.ColorDefault, version.AppName+" Help",
		fmt.Sprintf("Use `%shelp <command>` for details.", cfg.Prefix))
	for _, cat := range categories {
		var lines []string
		for _, c := range byCategory[cat] {
			line := fmt.Sprintf("`%s%s` - %s", cfg.Prefix, c.Name(), c.Description())
			if command.IsOwnerOnly(c) {
				line += " (owner)"
			}
			lines = append(lines, line)
		}
		e = e.AddField(cat, strings.Join(lines, "\n"))
	}
	return e.MessageEmbed
}

// DetailEmbed describes one command.
func DetailEmbed(c cmd.Command, prefix string) *discordgo.MessageEmbed {
	e := bot.NewEmbed(bot.ColorDefault, prefix+c.Name(), c.Description())

	if usage := cmd.UsageOf(c); usage != "" {
		e = e.AddField("Usage", "`"+prefix+usage+"`")
	}
	if aliases := cmd.AliasesOf(c); len(aliases) > 0 {
		e = e.AddField("Aliases", strings.Join(aliases, ", "))
	}
	e = e.AddField("Category", command.CategoryOf(c))
	if perms := command.PermissionsOf(c); perms != 0 {
		e = e.AddField("Requires", strings.Join(command.PermissionNamesOf(perms), ", "))
	}
	if command.IsOwnerOnly(c) {
		e = e.AddField("Access", "Bot owners only")
	}
	return e.MessageEmbed
}
