package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// newThoughtPrinter shows the transient progress status on stderr so it
// never mixes with streamed output on stdout.
func newThoughtPrinter() *stream.Thought {
	return stream.NewThought(func(value string) {
		if value != "" {
			fmt.Fprintf(os.Stderr, "… %s\n", value)
		}
	})
}

// table prints aligned rows the way most list subcommands need.
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printRow(w, header)
	for _, row := range rows {
		printRow(w, row)
	}
	w.Flush()
}

func printRow(w *tabwriter.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}
