package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"unsplashfetch/pkg/auth"
	"unsplashfetch/pkg/ui"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Unsplash access key",
		Long: `Manage the Unsplash access key used when UNSPLASH_ACCESS_KEY is not set.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

The environment variable always takes precedence and is never modified.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store an access key",
		Long: `Store an Unsplash access key in the first writable store.

The key is read from the terminal without echo. Create one at
https://unsplash.com/oauth/applications.`,
		Args: cobra.NoArgs,
		RunE: a.runAuthSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored access key",
		Args:  cobra.NoArgs,
		RunE:  a.runAuthDelete,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which access key would be used",
		Args:  cobra.NoArgs,
		RunE:  a.runAuthStatus,
	})

	return cmd
}

func (a *app) runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := a.keyManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Unsplash access key: ")
	key, err := readSecret(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to read access key: %w", err)
	}

	store, err := manager.Store(strings.TrimSpace(key))
	if err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout(), false).Info("Access key stored in", store)
	return nil
}

func (a *app) runAuthDelete(cmd *cobra.Command, args []string) error {
	manager, err := a.keyManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), false)
	if err := manager.Delete(); err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			printer.Info("Access key", "none stored")
			return nil
		}
		return err
	}

	printer.Info("Access key", "deleted")
	return nil
}

func (a *app) runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := a.keyManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), false)
	printer.Info("Stores", strings.Join(manager.Stores(), ", "))

	key, source, err := manager.Resolve()
	if err != nil {
		printer.Info("Access key", "not configured")
		return nil
	}

	printer.Info("Access key", auth.MaskKey(key))
	printer.Info("Source", source)
	return nil
}

// readSecret reads a line without echo when in is a terminal
func readSecret(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
