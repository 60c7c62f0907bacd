// Command kurumi runs the Discord bot.
//
//	kurumi run --config config/config.yaml
//	kurumi commands
//
// The bot token is read from DISCORD_TOKEN or a .token file in the working
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
