package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dusk-indust/kinship/internal/config"
	"github.com/dusk-indust/kinship/internal/kinship"
	"github.com/dusk-indust/kinship/internal/logging"
)

// CLI flags parsed from command line. Empty values fall back to kinship.yml.
type cliFlags struct {
	ProjectRoot string
	Locale      string
	Store       string
	DBPath      string
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: kinship [flags] <command> [args]

commands:
  roles <archive>      print every member's role relative to the root
  diagram <archive>    print a Mermaid diagram of the family tree
  export <archive>     print the archive with resolved roles as JSON
  import <file.json>   validate an archive file and save it to the store
  list                 list archives in the store
  init                 write kinship.yml and register the MCP server in .mcp.json
  serve-mcp            serve the archive tools over MCP

<archive> is a path to an archive JSON file or the slug of a stored archive.

flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the resolved settings for one invocation.
type app struct {
	root   string
	cfg    *config.ProjectConfig
	labels kinship.Labels
	log    *zap.Logger
	out    io.Writer
}

func run(args []string, out io.Writer) error {
	var flags cliFlags

	fs := flag.NewFlagSet("kinship", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding kinship.yml")
	fs.StringVar(&flags.Locale, "locale", "", "label language, e.g. ru or en")
	fs.StringVar(&flags.Store, "store", "", "archive store: memory, sqlite or kuzu")
	fs.StringVar(&flags.DBPath, "db", "", "database path for the sqlite and kuzu stores")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.Version {
		fmt.Fprintln(out, version)
		return nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	a, err := newApp(flags, out)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	ctx := context.Background()
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "roles":
		return a.runRoles(ctx, rest)
	case "diagram":
		return a.runDiagram(ctx, rest)
	case "export":
		return a.runExport(ctx, rest)
	case "import":
		return a.runImport(ctx, rest)
	case "list":
		return a.runList(ctx)
	case "init":
		return a.runInit(rest)
	case "serve-mcp":
		return a.runServeMCP(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newApp(flags cliFlags, out io.Writer) (*app, error) {
	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.Locale != "" {
		cfg.Locale = flags.Locale
	}
	if flags.Store != "" {
		cfg.Store = flags.Store
	}
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
	}
	cfg.Verbose = cfg.Verbose || flags.Verbose
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{
		root:   flags.ProjectRoot,
		cfg:    cfg,
		labels: kinship.LoadLabels(cfg.Locale),
		log:    log,
		out:    out,
	}, nil
}
