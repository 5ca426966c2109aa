// Command portfolio values a transaction history kept in a CSV file, without
// a server or database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&reportCmd{out: os.Stdout}, "")
	commander.Register(&checkCmd{out: os.Stdout}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
