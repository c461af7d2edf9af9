package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"backend-pathtracker/internal/pathstore"

	"github.com/google/subcommands"
)

const (
	jsonF = "json"
	textF = "text"
)

type listCmd struct {
	owner  string
	format string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "List saved paths of a tracker." }
func (*listCmd) Usage() string {
	return `list [-owner id] [-format text|json]
	List saved paths in recording order.
  `
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "tracker id owning the paths")
	f.StringVar(&c.format, "format", textF, "output format (text, json)")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	switch c.format {
	case jsonF, textF:
	default:
		return e.fail(nil, "Invalid format '%s'", c.format)
	}

	paths, err := e.store.ListAll(ctx, c.owner)
	if err != nil {
		return e.fail(err, "Failed to list paths")
	}

	summaries := make([]pathstore.PathSummary, 0, len(paths))
	for _, p := range paths {
		s := pathstore.PathSummary{ID: p.ID, RecordedAt: p.RecordedAt}
		if coords, err := p.Decode(); err == nil {
			s.Points = len(coords)
			s.Valid = true
		}
		summaries = append(summaries, s)
	}

	switch c.format {
	case textF:
		for _, s := range summaries {
			if !s.Valid {
				fmt.Fprintf(e.out, "%s - %s - unreadable\n", s.ID, s.RecordedAt.Format(time.RFC3339))
				continue
			}
			fmt.Fprintf(e.out, "%s - %s - %d points\n", s.ID, s.RecordedAt.Format(time.RFC3339), s.Points)
		}
	case jsonF:
		out, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return e.fail(err, "Failed to encode list")
		}
		fmt.Fprintln(e.out, string(out))
	}
	return subcommands.ExitSuccess
}
