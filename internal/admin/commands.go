// Package admin implements rosterctl, the operator CLI for schema
// migrations, legacy data import and account bootstrap.
package admin

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/spf13/cobra"
)

const programName = "rosterctl"

// operator is the caller recorded for members created from the CLI.
var operator = &auth.Identity{Name: programName, Email: programName, Role: "Admin"}

type globalOptions struct {
	configPath string
	driver     string
	dataDir    string
	dsn        string
}

// config loads the server configuration and overlays the store flags.
func (o *globalOptions) config() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.StoreDriver = o.driver
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	return cfg, nil
}

func (o *globalOptions) open(ctx context.Context) (*config.Config, store.Backend, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	b, err := store.Open(ctx, store.Options{
		Driver:  cfg.StoreDriver,
		DataDir: cfg.DataDir,
		DSN:     cfg.DatabaseDSN,
		Migrate: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, b, nil
}

func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	l, err := logging.New(cfg.LogLevel, "text", w)
	if err != nil {
		return nil, err
	}
	return l.With("component", programName), nil
}

// NewRootCommand builds the rosterctl command tree reading prompts from in.
func NewRootCommand(in io.Reader) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           programName,
		Short:         "Administer the roster hub data store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "server config file (json, jsonc or yaml)")
	root.PersistentFlags().StringVar(&opts.driver, "store", "", "store driver: json, sqlite, postgres, badger")
	root.PersistentFlags().StringVar(&opts.dataDir, "data", "", "data directory of the json and badger stores")
	root.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "database DSN of the sql stores")

	root.AddCommand(migrateCommand(opts), importCommand(opts), userCommand(opts, in))
	return root
}

func migrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, b, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			switch cfg.StoreDriver {
			case store.DriverPostgres, store.DriverSQLite:
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.StoreDriver)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s store has no schema to migrate\n", cfg.StoreDriver)
			}
			return nil
		},
	}
}

func importCommand(opts *globalOptions) *cobra.Command {
	var (
		from string
		hash bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy JSON collections keeping their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, b, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			counts, err := ImportDir(cmd.Context(), b, from, ImportOptions{HashPasswords: hash, Logger: logger})
			if err != nil {
				return err
			}

			names := make([]string, 0, len(counts))
			for n := range counts {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", n, counts[n])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "directory holding <collection>.json files")
	cmd.Flags().BoolVar(&hash, "hash-passwords", false, "hash plaintext user passwords while importing")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func userCommand(opts *globalOptions, in io.Reader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	var nm services.NewMember
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user and its roster member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if nm.Password == "" {
				pw, err := promptPassword(in, cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				nm.Password = pw
			}
			if nm.Password == "" {
				return fmt.Errorf("password must not be empty")
			}

			cfg, b, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			rm := repomanager.NewStoreRepositoryManager(b)
			tracker := presence.NewTracker(rm.Users(), cfg.PresenceWindow, logger)
			directory := services.NewDirectoryService(rm, tracker, nil, logger)

			m, err := directory.Create(ctx, operator, nm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member %d created for %s (%s)\n", m.ID, m.Email, m.Role)
			return nil
		},
	}
	add.Flags().StringVar(&nm.Email, "email", "", "login email")
	add.Flags().StringVar(&nm.Name, "name", "", "display name")
	add.Flags().StringVar(&nm.Role, "role", "Member", "organisation role")
	add.Flags().StringVar(&nm.Password, "password", "", "password; prompted for when omitted")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}
