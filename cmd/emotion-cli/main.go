package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/cli"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/client"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("EMOTION_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:3010"
	}
	server := flag.String("server", defaultServer, "API base URL")
	tokenFile := flag.String("token-file", cli.DefaultTokenPath(), "where the session token is kept")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(client.New(*server, nil), cli.TokenStore{Path: *tokenFile}, os.Stdin, os.Stdout)
	if err := app.Run(ctx, flag.Args()); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
