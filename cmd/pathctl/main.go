package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"backend-pathtracker/internal/config"
	"backend-pathtracker/internal/db"
	"backend-pathtracker/internal/pathstore"

	"github.com/google/subcommands"
)

// env is handed to every command as its first execute argument.
type env struct {
	store pathstore.Store
	out   io.Writer
	errw  io.Writer
}

func (e *env) fail(err error, format string, args ...interface{}) subcommands.ExitStatus {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Fprintln(e.errw, msg)
	return subcommands.ExitFailure
}

func register(cdr *subcommands.Commander) {
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cdr.CommandsCommand(), "")
	cdr.Register(&listCmd{}, "")
	cdr.Register(&showCmd{}, "")
	cdr.Register(&exportCmd{}, "")
	cdr.Register(&deleteCmd{}, "")
}

func main() {
	cfg := config.Load()
	pool, err := db.ConnectPostgres(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}

	cdr := subcommands.NewCommander(flag.CommandLine, os.Args[0])
	register(cdr)

	flag.Parse()
	e := &env{store: pathstore.NewPostgresStore(pool), out: os.Stdout, errw: os.Stderr}
	status := cdr.Execute(context.Background(), e)
	pool.Close()
	os.Exit(int(status))
}
