package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/jessevdk/go-flags"

	"github.com/sqldef/revdef"
	"github.com/sqldef/revdef/config"
	"github.com/sqldef/revdef/migration"
	"github.com/sqldef/revdef/util"
)

// version and revision are set via -ldflags
var version = "dev"
var revision = "HEAD"

// Return the config and options given by args
func parseOptions(args []string) (*config.Config, *revdef.Options, error) {
	loader := config.NewLoader()
	configGiven := false

	var opts struct {
		Down       bool `long:"down" description:"Print the down script instead of the up script"`
		Decamelize bool `long:"decamelize" description:"Convert camelCase identifiers to snake_case"`
		NoQuote    bool `long:"no-quote" description:"Don't wrap identifiers in double quotes"`
		Debug      bool `long:"debug" description:"Dump parsed migration files to stderr"`
		Help       bool `long:"help" description:"Show this help"`
		Version    bool `long:"version" description:"Show this version"`

		// Custom handlers for config flags to preserve order
		Config       func(string) `long:"config" description:"YAML file to specify: decamelize, quote, concurrency, shorthands (can be specified multiple times)"`
		ConfigInline func(string) `long:"config-inline" description:"YAML object to specify: decamelize, quote, concurrency, shorthands (can be specified multiple times)"`
		Concurrency  func(string) `long:"concurrency" description:"Number of files compiled at once. 0 compiles them one by one, a negative value removes the limit" value-name:"n"`
	}

	opts.Config = func(path string) {
		configGiven = true
		loader.File(path)
	}
	opts.ConfigInline = func(yaml string) {
		configGiven = true
		loader.Inline(yaml)
	}
	var concurrencyErr error
	opts.Concurrency = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil {
			concurrencyErr = fmt.Errorf("invalid --concurrency: %w", err)
			return
		}
		loader.Set("concurrency", n)
	}

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[OPTIONS] [migration.yml ...] < migration.yml"
	args, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Printf("%s (%s)\n", version, revision)
		os.Exit(0)
	}

	if opts.Debug {
		util.SetLogLevel(slog.LevelDebug)
	}

	if !configGiven {
		if path := config.FindConfigFile("."); path != "" {
			loader.File(path)
		}
	}
	if opts.Decamelize {
		loader.Set("decamelize", true)
	}
	if opts.NoQuote {
		loader.Set("quote", false)
	}
	if concurrencyErr != nil {
		return nil, nil, concurrencyErr
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	direction := migration.Up
	if opts.Down {
		direction = migration.Down
	}

	options := revdef.Options{
		Files:       revdef.ParseFiles(args),
		Direction:   direction,
		Concurrency: cfg.Concurrency,
		Debug:       opts.Debug,
	}
	return cfg, &options, nil
}

func main() {
	util.InitSlog()

	cfg, options, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if err := revdef.Run(os.Stdout, cfg.Generator(), options); err != nil {
		log.Fatal(err)
	}
}
