package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazyhaar/mesa/pkg/api"
	"github.com/hazyhaar/mesa/pkg/export"
	"github.com/hazyhaar/mesa/pkg/guest"
	"github.com/hazyhaar/mesa/pkg/logging"
	"github.com/hazyhaar/mesa/pkg/session"
	"github.com/hazyhaar/mesa/pkg/source"
	"github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "find":
		err = cmdFind(os.Args[2:], os.Stdout)
	case "tables":
		err = cmdTables(os.Args[2:], os.Stdout)
	case "export":
		err = cmdExport(os.Args[2:], os.Stdout)
	case "check":
		err = cmdCheck(os.Args[2:], os.Stdout)
	case "session":
		err = cmdSession(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(os.Args[1]+" failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mesa <command> [-config mesa.yaml]

Commands:
  find <name>     Find a guest's table
  tables          Print the seating chart by table
  export [-o dir] Write the current list as CSV (-o - for stdout)
  check <file>    Validate a guest list file
  session [-log f] Interactive search in the terminal
  mcp             Serve MCP tools over stdio
`)
}

// app is the state shared by every command.
type app struct {
	cfg    config
	logger *slog.Logger
	book   *guest.Book
}

func newApp(cfgPath string, logOut io.Writer) (*app, error) {
	cfg, found, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(logOut, logging.ParseLevel(cfg.LogLevel))
	if !found {
		logger.Debug("no config file, using defaults", "path", cfgPath)
	}

	initial := guest.Default()
	if cfg.Guests != "" {
		list, err := source.Load(cfg.Guests, cfg.sourceOptions())
		if err != nil {
			logger.Warn("guest list unusable, using built-in list", "error", err)
		} else {
			initial = list
			logger.Debug("guest list loaded", "path", cfg.Guests, "guests", len(list))
		}
	}

	book := guest.NewBook(initial, guest.BookOptions{
		Parser:    cfg.parser(),
		Collation: guest.NewCollation(cfg.Locale),
		Logger:    logger,
	})
	return &app{cfg: cfg, logger: logger, book: book}, nil
}

// watch starts the seed watcher when a seed file is configured.
func (a *app) watch(ctx context.Context) {
	if a.cfg.Guests == "" || !a.cfg.Watch {
		return
	}
	w := source.NewWatcher(a.cfg.Guests, a.cfg.sourceOptions(), a.book, a.logger)
	if err := w.Start(ctx); err != nil {
		a.logger.Warn("guest list watcher disabled", "error", err)
	}
}

func (a *app) endpoints() api.Endpoints {
	return api.NewEndpoints(a.book, a.logger)
}

func cmdFind(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	limit := fs.Int("n", 0, "maximum number of matches (0 = all)")
	fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return fmt.Errorf("missing name")
	}

	a, err := newApp(*cfgPath, os.Stderr)
	if err != nil {
		return err
	}
	resp, err := a.endpoints().FindTable(context.Background(), &api.FindTableRequest{Query: query, Limit: *limit})
	if err != nil {
		return err
	}
	printMatches(out, resp.(api.FindTableResponse))
	return nil
}

func printMatches(out io.Writer, resp api.FindTableResponse) {
	if resp.Total == 0 {
		fmt.Fprintln(out, "No encontramos ese nombre.")
		return
	}
	for _, g := range resp.Matches {
		fmt.Fprintf(out, "Mesa %s\t%s\n", g.Table, g.Name)
	}
	if resp.Truncated {
		fmt.Fprintf(out, "(%d de %d)\n", len(resp.Matches), resp.Total)
	}
}

func cmdTables(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tables", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	fs.Parse(args)

	a, err := newApp(*cfgPath, os.Stderr)
	if err != nil {
		return err
	}
	resp, err := a.endpoints().ListTables(context.Background(), nil)
	if err != nil {
		return err
	}
	printTables(out, resp.(api.TablesResponse).Tables)
	return nil
}

func printTables(out io.Writer, groups []guest.Group) {
	for i, grp := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Mesa %s (%d)\n", grp.Table, len(grp.Guests))
		for _, g := range grp.Guests {
			fmt.Fprintf(out, "  %s\n", g.Name)
		}
	}
}

func cmdExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	dir := fs.String("o", "", "output directory, or - for stdout (default: export_dir from config)")
	fs.Parse(args)

	a, err := newApp(*cfgPath, os.Stderr)
	if err != nil {
		return err
	}
	if *dir == "-" {
		resp, err := a.endpoints().ExportList(context.Background(), nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.(api.ExportListResponse).CSV)
		return nil
	}

	target := a.cfg.ExportDir
	if *dir != "" {
		target = *dir
	}
	where, err := export.Dir{Path: target}.Export(context.Background(), guest.ExportFileName, []byte(a.book.Export()))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d invitados -> %s\n", a.book.Len(), where)
	return nil
}

func cmdCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mesa check <file>")
	}
	cfg, _, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	list, err := source.Load(fs.Arg(0), cfg.sourceOptions())
	if err != nil {
		return err
	}
	groups := guest.NewCollation(cfg.Locale).GroupByTable(list)
	fmt.Fprintf(out, "%s: %d invitados en %d mesas\n", fs.Arg(0), len(list), len(groups))
	return nil
}

func cmdSession(args []string) error {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	logPath := fs.String("log", "", "append logs to this file while the UI runs (default: discard)")
	fs.Parse(args)

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	a, err := newApp(*cfgPath, logOut)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.watch(ctx)

	opts := a.cfg.sessionOptions()
	opts.Clipboard = export.NewOSC52(os.Stderr)
	opts.Files = export.Dir{Path: a.cfg.ExportDir}
	opts.Logger = a.logger

	return session.Run(ctx, session.New(a.book, opts), os.Stdin, os.Stdout)
}

func cmdMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "mesa.yaml", "path to config file")
	fs.Parse(args)

	a, err := newApp(*cfgPath, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.watch(ctx)

	srv := server.NewMCPServer("mesa", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, a.endpoints())

	a.logger.Info("mesa MCP server on stdio", "guests", a.book.Len())
	return server.ServeStdio(srv)
}
