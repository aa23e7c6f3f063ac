// Package cli implements the tally command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tally/internal/config"
	"github.com/Makepad-fr/tally/internal/kv"
	"github.com/Makepad-fr/tally/internal/logging"
	"github.com/Makepad-fr/tally/internal/store"
	"github.com/Makepad-fr/tally/internal/ui"
)

type rootFlags struct {
	config   string
	backend  string
	dataDir  string
	theme    string
	logLevel string
	noColor  bool
}

// app holds what a single invocation opens. Storage is opened lazily so
// help and usage errors never touch it.
type app struct {
	flags rootFlags

	// open is kv.Open outside tests.
	open func(context.Context, kv.Options) (kv.Adapter, error)

	cfg       *config.Config
	log       *log.Logger
	logCloser io.Closer
	adapter   kv.Adapter
	store     *store.Store
}

func newApp() *app {
	return &app{open: kv.Open}
}

// Main runs tally with the process arguments and returns the exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newApp().execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func (a *app) execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = exitError{code: exitRuntime, err: cerr}
	}
	if err == nil {
		return exitOK
	}
	var ee exitError
	if !errors.As(err, &ee) || ee.err != nil {
		ui.Fail(stderr, err.Error())
	}
	return codeOf(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tally",
		Short: "tally - todos by category",
		Long: `tally keeps a list of todos tagged work, private or other and shows
how done and pending todos split across those categories.`,
		Example: `  tally add -c private "Buy milk"
  tally ls --group
  tally done 2
  tally stats -f pending`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return exitError{code: exitUsage}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "config file (default $TALLY_CONFIG or the user config dir)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: file, redis or sqlite")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "directory for file and sqlite storage")
	pf.StringVar(&a.flags.theme, "theme", "", "output theme: classic, neon or mono")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.addCmd(),
		a.lsCmd(),
		a.doneCmd(),
		a.statsCmd(),
		a.profileCmd(),
		a.tuiCmd(),
	)
	return root
}

// setup loads the config, applies flag overrides and configures logging
// and output.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.config)
	if err != nil {
		return usageError(err)
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.flags.backend
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = a.flags.dataDir
	}
	if flags.Changed("theme") {
		cfg.Theme = a.flags.theme
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return usageError(fmt.Errorf("config: %w", err))
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return exitError{code: exitRuntime, err: err}
	}
	a.cfg, a.log, a.logCloser = cfg, logger, closer

	ui.SetTheme(cfg.Theme)
	if a.flags.noColor || os.Getenv("NO_COLOR") != "" {
		ui.SetColorForcing(false, true)
	}
	a.log.WithFields(log.Fields{
		"backend": cfg.Backend,
		"config":  cfg.Path,
	}).Debug("configured")
	return nil
}

func (a *app) openAdapter(ctx context.Context) (kv.Adapter, error) {
	if a.adapter != nil {
		return a.adapter, nil
	}
	opts, err := a.cfg.StorageOptions()
	if err != nil {
		return nil, err
	}
	adapter, err := a.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", opts.Backend, err)
	}
	a.adapter = adapter
	return adapter, nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	adapter, err := a.openAdapter(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store.New(adapter, store.Options{
		Key:          a.cfg.TodosKey,
		WriteTimeout: a.cfg.WriteTimeout,
		Logger:       a.log.WithField("component", "store"),
	})
	return a.store, nil
}

// settle waits for queued writes and reports a failed one. It reads
// Store.Failed rather than Errors, which the TUI may already have drained.
func (a *app) settle(ctx context.Context, w io.Writer) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Flush(ctx); err != nil {
		return err
	}
	if failed := a.store.Failed(); failed != nil {
		ui.Fail(w, "may not have saved: "+failed.Error())
		return exitError{code: exitRuntime}
	}
	return nil
}

// quietLogs silences stderr logging while a full-screen program owns the
// terminal. A configured log file keeps receiving entries.
func (a *app) quietLogs() (restore func()) {
	if a.cfg.LogFile != "" {
		return func() {}
	}
	prev := a.log.Out
	a.log.SetOutput(io.Discard)
	return func() { a.log.SetOutput(prev) }
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.adapter != nil {
		errs = append(errs, a.adapter.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
