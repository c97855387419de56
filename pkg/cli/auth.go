package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	urfave "github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "source_token"
	keyringService = "triage"
	keyringUser    = "source_token"
	tokenFileMode  = 0600

	clearFlagName = "clear"
)

func newAuthCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Save the access token used to import tasks from private URLs or GitHub repositories",
		UsageText: `triage auth --token ghp_xxx   # save token
   triage auth --clear           # remove saved token`,
		Action: cmdAuth,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  tokenFlagName,
				Usage: "Access token",
			},
			&urfave.BoolFlag{
				Name:  clearFlagName,
				Usage: "Remove the saved token",
			},
		},
	}
}

func cmdAuth(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)

	if cmd.Bool(clearFlagName) {
		if err := clearSourceToken(cfg.Dir); err != nil {
			return fmt.Errorf("clearing token: %w", err)
		}
		slog.Info("token removed")
		return nil
	}

	token := strings.TrimSpace(cmd.String(tokenFlagName))
	if token == "" {
		return fmt.Errorf("--%s or --%s required", tokenFlagName, clearFlagName)
	}

	if err := saveSourceToken(cfg.Dir, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	slog.Info("token saved")
	return nil
}

func saveSourceToken(dir, token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), tokenFileMode)
	}

	// Clean up legacy file if it exists
	os.Remove(filepath.Join(dir, tokenFileName))

	return nil
}

func getSourceToken(dir string) (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	b, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func clearSourceToken(dir string) error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}

	if err := os.Remove(filepath.Join(dir, tokenFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
