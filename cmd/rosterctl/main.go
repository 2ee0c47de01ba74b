package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ISTE-SCTCE/Admin/internal/admin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := admin.NewRootCommand(os.Stdin).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rosterctl:", err)
		stop()
		os.Exit(1)
	}
}
