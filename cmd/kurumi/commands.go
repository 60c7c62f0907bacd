package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/command/general"
	"github.com/keshon/kurumi/internal/middleware"
	"github.com/keshon/kurumi/internal/version"
	"github.com/keshon/kurumi/pkg/cmd"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "kurumi",
		Short:         version.AppDescription,
		Version:       fmt.Sprintf("%s (built %s)", version.AppVersion, version.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return runBot(c.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default config/config.yaml or $KURUMI_CONFIG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve commands",
			RunE: func(c *cobra.Command, _ []string) error {
				return runBot(c.Context(), flags)
			},
		},
		&cobra.Command{
			Use:   "commands",
			Short: "List registered commands",
			RunE: func(c *cobra.Command, _ []string) error {
				reg, err := buildRegistry()
				if err != nil {
					return err
				}
				return printCommands(c.OutOrStdout(), reg)
			},
		},
	)
	return root
}

// buildRegistry registers every command the bot serves.
func buildRegistry(mws ...cmd.Middleware) (*cmd.Registry, error) {
	reg := cmd.NewRegistry()
	if err := general.Register(reg, mws...); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	return reg, nil
}

func defaultMiddlewares() []cmd.Middleware {
	return []cmd.Middleware{middleware.WithCommandLogger()}
}

func printCommands(w io.Writer, reg *cmd.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tALIASES\tCATEGORY\tACCESS\tDESCRIPTION")
	for _, c := range reg.List() {
		access := "everyone"
		if perms := command.PermissionsOf(c); perms != 0 {
			access = strings.Join(command.PermissionNamesOf(perms), ",")
		}
		if command.IsOwnerOnly(c) {
			access = "owner"
		}
		aliases := strings.Join(cmd.AliasesOf(c), ",")
		if aliases == "" {
			aliases = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name(), aliases, command.CategoryOf(c), access, c.Description())
	}
	return tw.Flush()
}
