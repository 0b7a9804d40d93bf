package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// errUsage marks errors that should print usage and exit 2.
var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "pull":
		err = pullCmd(ctx, os.Args[2:], os.Stdout)
	case "schema":
		err = schemaCmd(os.Args[2:], os.Stdout)
	case "validate":
		err = validateCmd(os.Args[2:], os.Stdout)
	default:
		err = errUsage
	}
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		usage()
		os.Exit(2)
	default:
		fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `oscconnect CLI

Usage:
  oscconnect pull -config file.yaml [-env .env] [-format json|spew] [-skip-invalid] [-schedule "0 */15 * * * *"] [-v]
  oscconnect schema -object Accounts [-format avro|jsonschema]
  oscconnect validate -config file.yaml [-env .env]`)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "oscconnect: "+format+"\n", a...)
	os.Exit(1)
}
