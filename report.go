package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harrisonrobin/gravity/pkg/ranking"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printReport writes the human-readable ranking: active task and its plan,
// then the queue, then anything that could not be scored.
func printReport(w io.Writer, res ranking.Result) {
	if res.Active == nil {
		fmt.Fprintln(w, "Nothing pending.")
	} else {
		fmt.Fprintf(w, "Active: %s  [%s, %s]  score %.4f\n",
			res.Active.Task.Title, res.Active.Task.Kind, shortID(res.Active.Task.ID), res.Active.Score)
		for i, seg := range res.Plan {
			fmt.Fprintf(w, "  %d. %s\n", i+1, seg.Label())
		}
	}

	if len(res.Queue) > 0 {
		fmt.Fprintln(w, "\nQueue:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range res.Queue {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%.4f\n", shortID(r.Task.ID), r.Task.Title, r.Task.Kind, r.Score)
		}
		tw.Flush()
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, d := range res.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", shortID(d.TaskID), d.Reason)
		}
	}
}
