// Command headslug assigns heading ids to documents from the command line.
package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("headslug"),
		kong.Description("Assign stable, unique ids to document headings."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
