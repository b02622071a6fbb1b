package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"

	"github.com/smileynet/quickdial"
	"github.com/smileynet/quickdial/internal/card"
	"github.com/smileynet/quickdial/internal/config"
	"github.com/smileynet/quickdial/internal/contact"
	"github.com/smileynet/quickdial/internal/dashboard"
	"github.com/smileynet/quickdial/internal/dial"
	"github.com/smileynet/quickdial/internal/logging"
	"github.com/smileynet/quickdial/internal/selection"
	"github.com/smileynet/quickdial/internal/store"
	"github.com/smileynet/quickdial/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// callTimeout bounds how long the call command waits for the opener.
const callTimeout = 10 * time.Second

// CLI is the top-level command structure for quickdial.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Dashboard DashboardCmd     `cmd:"" default:"withargs" help:"Open the quick-dial screen (default)."`
	List      ListCmd          `cmd:"" help:"Print the contact cards as plain text."`
	Select    SelectCmd        `cmd:"" help:"Make a contact the active driver."`
	Current   CurrentCmd       `cmd:"" help:"Print the active driver."`
	Call      CallCmd          `cmd:"" help:"Call a contact through the platform phone handler."`
}

// Globals are flags shared by every command.
type Globals struct {
	Config  string `help:"Config file layered over the user and project configs." type:"path"`
	Catalog string `help:"Contact roster YAML or TOML file (overrides catalog.path)." type:"path"`
}

// loadConfig loads layered config from user and project paths, then the
// --config file, with env overrides and the --catalog flag applied last.
func (g *Globals) loadConfig() (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/quickdial/config.yaml"),
		".quickdial/config.yaml",
	}
	if g.Config != "" {
		if _, err := os.Stat(g.Config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, g.Config)
	}

	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Catalog != "" {
		cfg.Catalog.Path = g.Catalog
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open builds the session every command shares: config, logger, catalog,
// store and an initialized selection controller.
func (g *Globals) open() (*session, error) {
	return g.openSession(false)
}

// openForSelect is open for commands that overwrite the selection. A corrupt
// state file is logged and left for the write to replace.
func (g *Globals) openForSelect() (*session, error) {
	return g.openSession(true)
}

func (g *Globals) openSession(overwrite bool) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.New(cfg.Log.Path, level)
	if err != nil {
		return nil, err
	}
	rt := &session{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	cat, err := quickdial.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.catalog = cat

	st, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		rt.Close()
		return nil, &selection.StoreError{Op: "open", Key: selection.Key, Err: err}
	}
	rt.closers = append(rt.closers, st)

	rt.ctrl = selection.NewController(st, selection.WithLogger(logger))
	if err := rt.ctrl.Initialize(); err != nil {
		if !overwrite || !errors.Is(err, store.ErrCorrupt) {
			rt.Close()
			return nil, err
		}
		logger.Warn("replacing corrupt state file", "path", cfg.Storage.Path, "err", err)
	}

	logger.Debug("started",
		"version", version,
		"backend", cfg.Storage.Backend,
		"contacts", cat.Len(),
		"active", rt.ctrl.State().String(),
	)
	return rt, nil
}

// session holds the opened dependencies for one command invocation.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *contact.Catalog
	ctrl    *selection.Controller
	closers []io.Closer
}

// Close releases resources in reverse order of acquisition.
func (rt *session) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

func (rt *session) chrome() card.Chrome {
	return card.Chrome{
		Title:    rt.cfg.UI.Title,
		Subtitle: rt.cfg.UI.Subtitle,
		Footer:   rt.cfg.UI.Footer,
	}
}

func (rt *session) phoneFormat() contact.PhoneFormat {
	return contact.PhoneFormat(rt.cfg.UI.PhoneFormat)
}

func (rt *session) cards() []card.View {
	return card.Build(rt.catalog, rt.ctrl.State(), card.Options{PhoneFormat: rt.phoneFormat()})
}

// --- Dashboard command ---

// DashboardCmd opens the quick-dial screen.
type DashboardCmd struct {
	Plain bool `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// Run builds real dependencies and presents the screen.
func (d *DashboardCmd) Run(g *Globals) error {
	rt, err := g.open()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer rt.Close()

	m := dashboard.NewModel(rt.catalog, rt.ctrl,
		dashboard.WithDialer(dial.NewPlatformDialer(rt.cfg.Dial.Command)),
		dashboard.WithLogger(rt.logger),
		dashboard.WithChrome(rt.chrome()),
		dashboard.WithPhoneFormat(rt.phoneFormat()),
	)

	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: d.Plain,
		AltScreen:  rt.cfg.UI.AltScreen,
		Model:      m,
		Chrome:     rt.chrome(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return d.run(ctx, display)
}

// run drives the display, enabling testable wiring. An interrupt is a clean exit.
func (d *DashboardCmd) run(ctx context.Context, display tui.Display) error {
	err := display.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("dashboard: %w", err)
}

// --- List command ---

// ListCmd prints the cards once as plain text.
type ListCmd struct{}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	rt, err := g.open()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer rt.Close()
	return l.run(os.Stdout, rt)
}

func (l *ListCmd) run(w io.Writer, rt *session) error {
	if err := card.RenderPlain(w, rt.chrome(), rt.cards()); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return nil
}

// --- Select command ---

// SelectCmd makes a contact the active driver.
type SelectCmd struct {
	ID int `arg:"" help:"Contact ID to make active."`
}

// Run executes the select command.
func (s *SelectCmd) Run(g *Globals) error {
	rt, err := g.openForSelect()
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	defer rt.Close()
	return s.run(os.Stdout, rt)
}

// run persists the selection. IDs outside the catalog are stored with a warning.
func (s *SelectCmd) run(w io.Writer, rt *session) error {
	c, known := rt.catalog.Lookup(s.ID)
	if !known {
		_, _ = fmt.Fprintf(w, "Warning: contact %d is not in the catalog\n", s.ID)
	}

	if err := rt.ctrl.Select(s.ID); err != nil {
		return fmt.Errorf("select: %w", err)
	}

	if known {
		_, _ = fmt.Fprintf(w, "Active driver: %s (%d)\n", c.Name, c.ID)
	} else {
		_, _ = fmt.Fprintf(w, "Active driver: %d\n", s.ID)
	}
	return nil
}

// --- Current command ---

// CurrentCmd prints the active driver.
type CurrentCmd struct{}

// Run executes the current command.
func (c *CurrentCmd) Run(g *Globals) error {
	rt, err := g.open()
	if err != nil {
		return fmt.Errorf("current: %w", err)
	}
	defer rt.Close()
	return c.run(os.Stdout, rt)
}

func (c *CurrentCmd) run(w io.Writer, rt *session) error {
	id, ok := rt.ctrl.Current()
	if !ok {
		_, _ = fmt.Fprintln(w, "No active driver")
		return nil
	}
	ct, known := rt.catalog.Lookup(id)
	if !known {
		_, _ = fmt.Fprintf(w, "%d (not in catalog)\n", id)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%d %s %s\n", ct.ID, ct.Name, contact.FormatPhone(ct.Phone, rt.phoneFormat()))
	return nil
}

// --- Call command ---

// CallCmd hands a tel: URI for a contact to the platform.
type CallCmd struct {
	ID int `arg:"" help:"Contact ID to call."`
}

// Run executes the call command.
func (c *CallCmd) Run(g *Globals) error {
	rt, err := g.open()
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, os.Stdout, rt, dial.NewPlatformDialer(rt.cfg.Dial.Command))
}

// run dials the contact's raw phone, enabling testable wiring.
func (c *CallCmd) run(ctx context.Context, w io.Writer, rt *session, d dial.Dialer) error {
	ct, err := rt.catalog.Get(c.ID)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}

	uri := dial.URI(ct.Phone)
	_, _ = fmt.Fprintf(w, "Calling %s (%s)\n", ct.Name, uri)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	if err := d.Dial(ctx, uri); err != nil {
		rt.logger.Warn("dial failed", "id", ct.ID, "uri", uri, "err", err)
		return fmt.Errorf("call: %w", err)
	}
	rt.logger.Info("dialed", "id", ct.ID, "uri", uri)
	return nil
}

// --- Exit codes ---

const (
	exitSuccess = 0
	exitSetup   = 1
	exitStorage = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *selection.StoreError
	if errors.As(err, &se) {
		return exitStorage
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("quickdial"),
		kong.Description("Pick the active driver and call contacts from the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
