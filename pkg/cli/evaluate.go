package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/triage/pkg/config"
	"github.com/mchmarny/triage/pkg/data"
	"github.com/mchmarny/triage/pkg/label"
	"github.com/mchmarny/triage/pkg/score"
	"github.com/mchmarny/triage/pkg/submission"
	urfave "github.com/urfave/cli/v3"
)

const (
	goldFlagName        = "gold"
	taskFlagName        = "task"
	constraintsFlagName = "constraints"
	scoredFlagName      = "scored"
)

func newEvaluateCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "evaluate",
		Aliases: []string{"eval"},
		Usage:   "Validate a test file and, given a gold file, score it",
		UsageText: `triage evaluate test.tsv                                  # validate only
   triage evaluate --gold gold.tsv test.tsv                  # validate and score
   triage evaluate --task 2016-test --gold gold.tsv test.tsv # enforce the task id set
   triage evaluate --scored crisis,red,amber,green --gold gold.tsv test.tsv`,
		ArgsUsage:       "TEST_FILE",
		HideHelpCommand: true,
		Action:          cmdEvaluate,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  goldFlagName,
				Usage: "Gold file to score against; without it the test file is only validated",
			},
			&urfave.StringFlag{
				Name:  taskFlagName,
				Usage: "Named constraint set the test file id set must match",
			},
			&urfave.StringFlag{
				Name:  constraintsFlagName,
				Usage: "File with one id per line the test file id set must match",
			},
			&urfave.StringFlag{
				Name:  scoredFlagName,
				Usage: fmt.Sprintf("Labels averaged into the macro F-score (default: %s)", label.Join(label.DefaultScored())),
			},
		},
	}
}

func cmdEvaluate(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one test file, got %d arguments", cmd.Args().Len())
	}
	testPath := cmd.Args().First()

	scored, err := scoredLabels(cfg, cmd.String(scoredFlagName))
	if err != nil {
		return err
	}

	constraints, err := resolveConstraints(cfg, cmd.String(taskFlagName), cmd.String(constraintsFlagName))
	if err != nil {
		return err
	}

	test, err := submission.Load(testPath, constraints)
	if err != nil {
		return err
	}
	if err := confirm(cfg, testPath); err != nil {
		return err
	}

	goldPath := cmd.String(goldFlagName)
	if goldPath == "" {
		return nil
	}

	gold, err := submission.Load(goldPath, nil)
	if err != nil {
		return err
	}
	if err := confirm(cfg, goldPath); err != nil {
		return err
	}

	report, err := score.Score(test, gold, score.Options{
		Scheme: label.DefaultScheme(),
		Scored: scored,
	})
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatText {
		return report.Render(cfg.Out)
	}

	if err := encode(cfg.Out, cfg.Format, report); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	return nil
}

// confirm reports a validated file on stdout for text output and on the log
// otherwise, so encoded reports stay parseable.
func confirm(cfg *appConfig, path string) error {
	if cfg.Format != config.FormatText {
		slog.Info(path + " validates.")
		return nil
	}
	if _, err := fmt.Fprintf(cfg.Out, "%s validates.\n", path); err != nil {
		return fmt.Errorf("writing confirmation: %w", err)
	}
	return nil
}

func scoredLabels(cfg *appConfig, flag string) ([]label.Label, error) {
	if flag != "" {
		l, err := label.ParseList(flag)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s value: %w", scoredFlagName, err)
		}
		return l, nil
	}
	return cfg.Conf.ScoredLabels()
}

// resolveConstraints returns the id set the test file must match, if any.
// Named tasks come from the task store first and config.yaml second.
func resolveConstraints(cfg *appConfig, task, path string) (submission.Constraints, error) {
	if task != "" && path != "" {
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", taskFlagName, constraintsFlagName)
	}

	if path != "" {
		return submission.LoadConstraints(path)
	}

	if task == "" {
		return nil, nil
	}

	db, err := cfg.openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ids, err := data.GetTaskIDs(db, task)
	if err == nil {
		slog.Debug("task constraints loaded from store", "task", task, "ids", len(ids))
		return submission.NewConstraints(ids...), nil
	}
	if !errors.Is(err, data.ErrTaskNotFound) {
		return nil, fmt.Errorf("loading task %s: %w", task, err)
	}

	file, ok := cfg.Conf.TaskFile(task)
	if !ok {
		return nil, fmt.Errorf("unknown task %s: import it with 'triage task import' or map it under tasks in config.yaml", task)
	}

	slog.Debug("task constraints loaded from config", "task", task, "file", file)
	return submission.LoadConstraints(file)
}
