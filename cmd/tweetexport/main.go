package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tehttp "github.com/fwojciec/tweetexport/http"
	"github.com/fwojciec/tweetexport/rod"
	teslog "github.com/fwojciec/tweetexport/slog"
	"github.com/fwojciec/tweetexport/sqlite"
	"github.com/fwojciec/tweetexport/yaml"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is fine.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path, used when neither --db nor TWEETEXPORT_DB is set.
	DBPath string

	// Settings path, used when neither --config nor TWEETEXPORT_CONFIG is set.
	ConfigPath string

	// SQLite database backing the export archive.
	DB *sqlite.DB

	// Now stamps exports and fallback timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultPath("archive.db"),
		ConfigPath: defaultPath("settings.yaml"),
		Now:        time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Now:    m.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("tweetexport"),
		kong.Description("Extract, filter and export tweets from timeline pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'tweetexport --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = m.ConfigPath
	}
	settings, err := yaml.LoadSettings(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set TWEETEXPORT_CONFIG to use a different settings file\n")
		return err
	}
	deps.Settings = settings
	deps.Logger = newLogger(stderr, cli.Debug || settings.EnableDebugMode)

	cmd := kongCtx.Selected().Name

	// Open the archive only for commands that use it.
	if (cmd == "history" && cli.History.Dir == "") || (cmd == "export" && cli.Export.Archive) || (cmd == "watch" && cli.Watch.Archive) {
		dbPath := cli.DB
		if dbPath == "" {
			dbPath = m.DBPath
		}
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set TWEETEXPORT_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		defer m.Close()
		deps.Archive = sqlite.NewArchive(m.DB)
	}

	deps.Fetcher = teslog.NewLoggingFetcher(
		tehttp.NewRetryFetcher(tehttp.NewFetcher(), tehttp.DefaultRetryDelays(), deps.Logger),
		deps.Logger,
	)

	if (cmd == "scan" && cli.Scan.Render) || (cmd == "export" && cli.Export.Render) {
		fetcher, err := rod.NewHeadlessFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer fetcher.Close()
		deps.Renderer = teslog.NewLoggingFetcher(fetcher, deps.Logger)
	}

	if cmd == "watch" {
		opts := []rod.BrowserOption{rod.WithHeadless(!cli.Watch.Headed)}
		if cli.Watch.UserDataDir != "" {
			opts = append(opts, rod.WithUserDataDir(cli.Watch.UserDataDir))
		}
		browser, err := rod.NewBrowser(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer browser.Close()
		deps.Browser = browser
	}

	return kongCtx.Run(deps)
}

// newLogger returns a text logger on w.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".tweetexport")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}
