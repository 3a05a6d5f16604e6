// Command examwatch emails when Goethe exam slots become bookable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/morikuni/failure/v2"
	"github.com/rsilvagit/examwatch/internal/cli"
	"github.com/rsilvagit/examwatch/internal/config"
	"github.com/rsilvagit/examwatch/internal/log"
)

func main() {
	config.LoadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx)
	stop()

	if err != nil {
		var userMessage string
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		} else {
			userMessage = err.Error()
		}
		log.Error("Run failed", "detail", fmt.Sprintf("%+v", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
