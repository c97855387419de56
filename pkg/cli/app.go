package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mchmarny/triage/pkg/config"
	"github.com/mchmarny/triage/pkg/data"
	"github.com/mchmarny/triage/pkg/logging"
	"github.com/mchmarny/triage/pkg/submission"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "triage"

	// exitOperational is returned for failures outside the validation
	// taxonomy: I/O, configuration and usage errors.
	exitOperational = 10

	debugFlagName     = "debug"
	configDirFlagName = "config"
	dbFlagName        = "db"
	formatFlagName    = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	setLogger = logging.SetDefaultCLILogger
)

type ctxKey struct{}

type appConfig struct {
	Dir    string
	DBPath string
	Format string
	Debug  bool
	Conf   *config.Config
	Out    io.Writer
}

// openDB initializes and opens the task store.
func (c *appConfig) openDB() (*sql.DB, error) {
	if err := data.Init(c.DBPath); err != nil {
		return nil, fmt.Errorf("initializing task store: %w", err)
	}
	db, err := data.GetDB(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}
	return db, nil
}

func getConfig(ctx context.Context) *appConfig {
	if c, ok := ctx.Value(ctxKey{}).(*appConfig); ok {
		return c
	}
	return &appConfig{Conf: &config.Config{Format: config.FormatText}, Format: config.FormatText, Out: os.Stdout}
}

// Execute creates and runs the CLI application.
func Execute() {
	setLogger("info")
	os.Exit(run(context.Background(), os.Args, os.Stdout))
}

// run executes the app and returns the process exit status.
func run(ctx context.Context, args []string, out io.Writer) int {
	return exitStatus(newApp(out).Run(ctx, args))
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}

	var ve *submission.ValidationError
	if errors.As(err, &ve) {
		slog.Error(ve.Error() + ", aborting.")
		return ve.ExitCode()
	}

	slog.Error("fatal error", "error", err)
	return exitOperational
}

func newApp(out io.Writer) *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:                 "Validate and score triage label submissions",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Writer:                out,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:    configDirFlagName,
				Usage:   "Directory holding config.yaml (default: $HOME/.triage)",
				Sources: urfave.EnvVars("TRIAGE_CONFIG_DIR"),
			},
			&urfave.StringFlag{
				Name:  dbFlagName,
				Usage: "Task store: sqlite file path or postgres:// DSN (default: <config>/tasks.db)",
			},
			&urfave.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [text, json, yaml]",
			},
		},
		Commands: []*urfave.Command{
			newEvaluateCmd(),
			newTaskCmd(),
			newAuthCmd(),
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := loadAppConfig(cmd, out)
			if err != nil {
				return ctx, err
			}
			return context.WithValue(ctx, ctxKey{}, cfg), nil
		},
		ExitErrHandler: func(_ context.Context, _ *urfave.Command, _ error) {
			// exit status is resolved by run
		},
	}
}

func loadAppConfig(cmd *urfave.Command, out io.Writer) (*appConfig, error) {
	debug := cmd.Bool(debugFlagName)
	if debug {
		setLogger("debug")
	}

	dir := cmd.String(configDirFlagName)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		dir = d
	}

	conf, err := config.ReadOrCreate(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if !debug {
		setLogger(conf.LogLevel)
	}

	format := conf.Format
	if f := cmd.String(formatFlagName); f != "" {
		if f == "yml" {
			f = config.FormatYAML
		}
		format = f
	}
	switch format {
	case config.FormatText, config.FormatJSON, config.FormatYAML:
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}

	dbPath := cmd.String(dbFlagName)
	if dbPath == "" {
		dbPath = conf.DB
	}
	if dbPath == "" {
		dbPath = filepath.Join(dir, data.DataFileName)
	}

	slog.Debug("config loaded", "dir", dir, "db", dbPath, "format", format)

	return &appConfig{
		Dir:    dir,
		DBPath: dbPath,
		Format: format,
		Debug:  debug,
		Conf:   conf,
		Out:    out,
	}, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == config.FormatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
