package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/payments/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the embedded documentation.
type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the pay manual" }
func (*topicCmd) Usage() string {
	return `pay topic [-list] [all | <name>...]

  Prints manual pages: the overview when no name is given, every page with "all".
  Use -list to print the page names only.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "Print the names of the manual pages.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names, err := docs.GetAllTopics()
	if err != nil {
		fmt.Fprintf(stderr, "Error listing manual pages: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.list {
		fmt.Fprintln(stdout, strings.Join(names, "\n"))
		return subcommands.ExitSuccess
	}

	pages := f.Args()
	switch {
	case len(pages) == 0:
		pages = []string{docs.Readme}
	case slices.Contains(pages, "all"):
		pages = append([]string{docs.Readme}, names...)
	}

	content, err := docs.GetTopics(pages...)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading manual: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(content)
	return subcommands.ExitSuccess
}
