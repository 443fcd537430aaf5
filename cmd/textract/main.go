package main

import (
	"log"
	"os"

	"github.com/alexflint/go-arg"

	textractor "github.com/aliok/repo-textractor"
)

// main is our entrypoint: parse args, wire the app, and run it.
func main() {
	var args textractor.Args
	parser := arg.MustParse(&args)

	if args.Serve == nil && args.Pick == nil && args.Get == nil && args.History == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	app, cleanup, err := textractor.BuildApp(&args)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
