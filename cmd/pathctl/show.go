package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"backend-pathtracker/internal/pathstore"

	"github.com/google/subcommands"
)

type showCmd struct {
	owner string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "Print the coordinates of a saved path." }
func (*showCmd) Usage() string {
	return `show [-owner id] <path id>
	Print one "latitude,longitude" pair per line.
  `
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "tracker id owning the path")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)
	if f.NArg() != 1 {
		fmt.Fprint(e.errw, c.Usage())
		return subcommands.ExitUsageError
	}

	p, err := e.store.Get(ctx, c.owner, f.Arg(0))
	if err != nil {
		return e.fail(err, "Failed to load path '%s'", f.Arg(0))
	}
	coords, err := p.Decode()
	if err != nil {
		return e.fail(err, "Path '%s' is unreadable", p.ID)
	}
	for _, co := range coords {
		fmt.Fprintf(e.out, "%v,%v\n", co.Latitude, co.Longitude)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	owner      string
	outputFile string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "Export a saved path as GPX." }
func (*exportCmd) Usage() string {
	return `export [-owner id] [-output file] <path id>
	Write the path as a GPX 1.1 track.
  `
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "tracker id owning the path")
	f.StringVar(&c.outputFile, "output", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)
	if f.NArg() != 1 {
		fmt.Fprint(e.errw, c.Usage())
		return subcommands.ExitUsageError
	}

	p, err := e.store.Get(ctx, c.owner, f.Arg(0))
	if err != nil {
		return e.fail(err, "Failed to load path '%s'", f.Arg(0))
	}
	coords, err := p.Decode()
	if err != nil {
		return e.fail(err, "Path '%s' is unreadable", p.ID)
	}

	w := e.out
	if c.outputFile != "" {
		file, err := os.Create(c.outputFile)
		if err != nil {
			return e.fail(err, "Could not open file '%s'", c.outputFile)
		}
		defer file.Close()
		w = file
	}

	if err := pathstore.WriteGPX(w, p, coords); err != nil {
		return e.fail(err, "Failed to write GPX")
	}
	if c.outputFile != "" {
		fmt.Fprintf(e.out, "Exported %d points to %s\n", len(coords), c.outputFile)
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	owner string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "Delete a saved path." }
func (*deleteCmd) Usage() string {
	return `delete [-owner id] <path id>
	Remove a saved path permanently.
  `
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "tracker id owning the path")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)
	if f.NArg() != 1 {
		fmt.Fprint(e.errw, c.Usage())
		return subcommands.ExitUsageError
	}
	if err := e.store.Delete(ctx, c.owner, f.Arg(0)); err != nil {
		return e.fail(err, "Failed to delete path '%s'", f.Arg(0))
	}
	fmt.Fprintf(e.out, "Deleted %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}
