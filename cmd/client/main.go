// Command stance is the CLI client for the stance server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	clientapi "github.com/stancehq/stance/internal/client/api"
	"github.com/stancehq/stance/internal/client/cli"
	"github.com/stancehq/stance/internal/client/session"
)

func main() {
	serverURL := flag.String("server", envOr("STANCE_SERVER", "http://localhost:8080"), "server base URL")
	sessionPath := flag.String("session", "", "session file path (default ~/.stance/session.db)")
	flag.Parse()

	if flag.NArg() < 1 {
		cli.NewApp(cli.NewStdio(), nil, nil).Usage()
		os.Exit(2)
	}

	path := *sessionPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".stance")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		path = filepath.Join(dir, "session.db")
	}

	sessions, err := session.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open session store: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = sessions.Close()
	}()

	app := cli.NewApp(cli.NewStdio(), clientapi.NewClient(*serverURL), sessions)

	if err := app.Run(context.Background(), flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
