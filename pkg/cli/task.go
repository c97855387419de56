package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/triage/pkg/config"
	"github.com/mchmarny/triage/pkg/data"
	"github.com/mchmarny/triage/pkg/net"
	"github.com/mchmarny/triage/pkg/submission"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	nameFlagName   = "name"
	fileFlagName   = "file"
	urlFlagName    = "url"
	githubFlagName = "github"
	tokenFlagName  = "token"

	maxConcurrentFetches = 4
)

func newTaskCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "task",
		Usage:           "Manage named constraint sets (the id list of a benchmark release)",
		HideHelpCommand: true,
		Commands: []*urfave.Command{
			{
				Name:    "import",
				Aliases: []string{"i"},
				Usage:   "Import a task id set from files, URLs or GitHub repositories",
				UsageText: `triage task import --name 2016-test --file test-ids.txt
   triage task import --name 2016-test --url https://example.org/clpsych16/test-ids.txt
   triage task import --name 2016-test --github clpsych/triage/sets/test-ids.txt@v2016`,
				Action: cmdTaskImport,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:     nameFlagName,
						Usage:    "Task name",
						Required: true,
					},
					&urfave.StringSliceFlag{
						Name:  fileFlagName,
						Usage: "Local id file (can be specified multiple times)",
					},
					&urfave.StringSliceFlag{
						Name:  urlFlagName,
						Usage: "URL of an id file (can be specified multiple times)",
					},
					&urfave.StringSliceFlag{
						Name:  githubFlagName,
						Usage: "GitHub file as owner/repo/path[@ref] (can be specified multiple times)",
					},
					&urfave.StringFlag{
						Name:    tokenFlagName,
						Usage:   "Access token for remote sources (default: token saved with 'triage auth')",
						Sources: urfave.EnvVars("TRIAGE_TOKEN"),
					},
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List imported tasks",
				Action:  cmdTaskList,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete an imported task",
				Action:  cmdTaskDelete,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:     nameFlagName,
						Usage:    "Task name",
						Required: true,
					},
				},
			},
		},
	}
}

// ImportResult is the outcome of a task import.
type ImportResult struct {
	Task    *data.Task   `json:"task" yaml:"task"`
	Sources []net.Source `json:"sources" yaml:"sources"`
}

func taskSources(cmd *urfave.Command) []net.Source {
	var list []net.Source
	add := func(kind net.SourceKind, values []string) {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				list = append(list, net.Source{Kind: kind, Location: v})
			}
		}
	}
	add(net.SourceFile, cmd.StringSlice(fileFlagName))
	add(net.SourceURL, cmd.StringSlice(urlFlagName))
	add(net.SourceGitHub, cmd.StringSlice(githubFlagName))
	return list
}

func cmdTaskImport(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	name := cmd.String(nameFlagName)

	sources := taskSources(cmd)
	if len(sources) == 0 {
		return fmt.Errorf("at least one --%s, --%s or --%s source required", fileFlagName, urlFlagName, githubFlagName)
	}

	token := cmd.String(tokenFlagName)
	if token == "" && needsToken(sources) {
		t, err := getSourceToken(cfg.Dir)
		if err != nil {
			slog.Debug("no saved token, using anonymous access", "error", err)
		}
		token = t
	}

	opener, err := net.NewOpener(ctx, token)
	if err != nil {
		return err
	}

	ids, err := fetchIDs(ctx, opener, sources)
	if err != nil {
		return err
	}

	db, err := cfg.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	locations := make([]string, len(sources))
	for i, s := range sources {
		locations[i] = s.String()
	}

	t, err := data.SaveTask(db, name, strings.Join(locations, ","), ids.Sorted())
	if err != nil {
		return fmt.Errorf("saving task %s: %w", name, err)
	}

	slog.Debug("task imported", "task", t.Name, "ids", t.Size, "sources", len(sources))

	if cfg.Format == config.FormatText {
		_, err := fmt.Fprintf(cfg.Out, "imported task %s: %d ids from %d sources\n", t.Name, t.Size, len(sources))
		return err
	}
	return encode(cfg.Out, cfg.Format, &ImportResult{Task: t, Sources: sources})
}

func needsToken(sources []net.Source) bool {
	for _, s := range sources {
		if s.Kind != net.SourceFile {
			return true
		}
	}
	return false
}

// fetchIDs reads all sources concurrently and returns the union of their ids.
func fetchIDs(ctx context.Context, opener *net.Opener, sources []net.Source) (submission.Constraints, error) {
	sets := make([]submission.Constraints, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, s := range sources {
		g.Go(func() error {
			rc, err := opener.Open(gctx, s)
			if err != nil {
				return fmt.Errorf("opening %s: %w", s, err)
			}
			defer rc.Close()

			c, err := submission.ReadConstraints(rc)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s, err)
			}
			slog.Debug("source read", "source", s.String(), "ids", c.Len())
			sets[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make(submission.Constraints)
	for _, c := range sets {
		for id := range c {
			all[id] = struct{}{}
		}
	}
	return all, nil
}

func cmdTaskList(ctx context.Context, _ *urfave.Command) error {
	cfg := getConfig(ctx)

	db, err := cfg.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := data.ListTasks(db)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}

	if cfg.Format != config.FormatText {
		return encode(cfg.Out, cfg.Format, list)
	}

	for _, t := range list {
		if _, err := fmt.Fprintf(cfg.Out, "%s\t%d\t%s\t%s\n", t.Name, t.Size, formatTime(t.Imported), t.Source); err != nil {
			return fmt.Errorf("writing task list: %w", err)
		}
	}
	return nil
}

func cmdTaskDelete(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	name := cmd.String(nameFlagName)

	db, err := cfg.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := data.DeleteTask(db, name); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	slog.Info("task deleted", "task", name)
	return nil
}
