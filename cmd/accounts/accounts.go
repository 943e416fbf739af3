package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dmitrijs2005/schedsync/internal/server/config"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/schedsync/internal/server/services"
)

// errMemoryStore is returned for the in-process store, whose accounts live
// only inside a running server. Use seed_accounts in the server config.
var errMemoryStore = errors.New(`the "memory" database lives inside the server process; use seed_accounts in the server config instead`)

// Test seams.
var (
	readPassword = term.ReadPassword
	openStore    = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		return repomanager.OpenPostgres(ctx, dsn)
	}
)

func newRootCommand() *cobra.Command {
	var configFile, dsn string

	root := &cobra.Command{
		Use:           "schedsync-accounts",
		Short:         "Provision accounts on a schedsync server database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "server JSON config file")
	root.PersistentFlags().StringVarP(&dsn, "database-dsn", "d", "", "PostgreSQL DSN (overrides the config file)")

	// serverConfig resolves the DSN the way the server does.
	serverConfig := func() (*config.Config, error) {
		var args []string
		if configFile != "" {
			args = append(args, "--config", configFile)
		}
		if dsn != "" {
			args = append(args, "--database-dsn", dsn)
		}
		return config.LoadConfig(args)
	}

	root.AddCommand(newAddCommand(serverConfig))
	return root
}

func newAddCommand(serverConfig func() (*config.Config, error)) *cobra.Command {
	var username, color string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := readAccountPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}

			cfg, err := serverConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.DatabaseDSN == config.MemoryDSN {
				return errMemoryStore
			}
			store, err := openStore(ctx, cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("db init error: %w", err)
			}
			defer store.Close()
			if err := store.RunMigrations(ctx); err != nil {
				return fmt.Errorf("migrations error: %w", err)
			}

			acc, err := services.NewAccountService(store).Create(ctx, username, password, color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (#%d)\n", acc.Username, acc.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVar(&color, "color", "", "display color as #rgb or #rrggbb")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func readAccountPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
