package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caingletaouievyv/tasktracker-api/app"
)

const usage = `usage: tasktracker [command]

commands:
  serve          run the HTTP API (default)
  purge-tokens   delete refresh tokens that expired before now minus -retention
`

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = serve()
	case "purge-tokens":
		err = purgeTokens(args)
	case "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "tasktracker %s: %v\n", command, err)
		os.Exit(1)
	}
}

func serve() error {
	application, err := app.New(nil)
	if err != nil {
		return err
	}
	return application.Run()
}

func purgeTokens(args []string) error {
	flags := flag.NewFlagSet("purge-tokens", flag.ExitOnError)
	retention := flags.Duration("retention", 24*time.Hour, "keep expired tokens this long before deleting them")
	timeout := flags.Duration("timeout", time.Minute, "abort the purge after this long")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	purged, err := app.PurgeExpiredTokens(ctx, nil, *retention)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "purged %d expired refresh tokens\n", purged)
	return nil
}
