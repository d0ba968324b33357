// Command shipmerge merges shipment document extractions offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Populated at build time with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
