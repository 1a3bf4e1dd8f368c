package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pet-auction/internal/app"
	"pet-auction/internal/auth"
	"pet-auction/internal/config"
	"pet-auction/utils"
)

const usage = `usage: pet-auction [-config path] <command> [flags]

commands:
  serve                      run the HTTP API and background workers (default)
  sweep                      run one expiration pass and print the results
  token -user id [-role r]   mint a bearer token
`

func main() {
	configPath := flag.String("config", os.Getenv("AUCTION_CONFIG"), "path to a TOML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.Log.Level)

	command, args := "serve", flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = serve(ctx, cfg)
	case "sweep":
		err = sweep(ctx, cfg)
	case "token":
		err = token(cfg, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Starting auction server on :%s...\n", cfg.Server.Port)
	return a.Run(ctx)
}

func sweep(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Println(r.String())
	}
	fmt.Printf("%d auction(s) processed\n", len(results))
	return nil
}

func token(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.String("user", "", "user id to put in the token subject")
	role := fs.String("role", auth.RoleBidder, "bidder or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("-user is required")
	}

	resp, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration).IssueToken(*userID, *role)
	if err != nil {
		return err
	}
	fmt.Println(resp.Token)
	return nil
}
