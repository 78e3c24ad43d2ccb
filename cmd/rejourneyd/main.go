// Command rejourneyd runs the session replay daemon in the foreground. It is
// the standalone equivalent of `rejourney daemon run` for init systems that
// manage the process themselves.
package main

import (
	"context"
	"log"
	"os"

	"rejourney/internal/config"
	"rejourney/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Printf("rejourneyd: %v", err)
		os.Exit(1)
	}
}
