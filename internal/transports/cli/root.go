package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"alaqsa/internal/app"
	"alaqsa/internal/config"
	"alaqsa/internal/shell"
	"alaqsa/internal/storage"
	"alaqsa/pkg/logger"
)

var errAuditDisabled = errors.New("audit journal is disabled")

type rootOptions struct {
	configPath string
	verbose    bool
	getenv     func(string) string
}

// New создает корневую CLI-команду. Без подкоманды запускается оболочка.
func New(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "aqsa",
		Short:         "Al-Aqsa: оболочка для загрузки и запуска модулей эксплойтов",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newShellCmd(opts))
	root.AddCommand(newInspectCmd(opts))
	root.AddCommand(newAuditCmd(opts))
	root.AddCommand(newVersionCmd(version))
	return root
}

func (o *rootOptions) bootstrap(cmd *cobra.Command) (*app.App, error) {
	env, err := config.LookupEnv(o.getenv)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	lg := logger.New(cfg.Agent.LogLevel, cmd.ErrOrStderr())
	if o.verbose {
		lg.SetLevel(logrus.DebugLevel)
	}
	return app.NewApp(cmd.Context(), cfg, env, lg)
}

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Интерактивная оболочка",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	a, err := opts.bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if a.Config.Shell.Banner {
		shell.PrintBanner(out, a.HostLine(cmd.Context()))
	}
	rl, err := shell.NewReadline(shell.Prompt(a.Env.User, a.Config.Shell.PromptName), a.Config.Shell.HistoryFile)
	if err != nil {
		return err
	}
	defer rl.Close()

	repl := &shell.REPL{
		Input:      rl,
		Dispatcher: a.Dispatcher(out, shell.NewSpinner(cmd.ErrOrStderr())),
		Out:        out,
		Log:        a.Log,
	}
	return repl.Run(cmd.Context())
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <module path>",
		Short: "Загрузить модуль и показать описание и опции",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			d := a.Dispatcher(cmd.OutOrStdout(), nil)
			d.Dispatch(ctx, shell.Command{Kind: shell.KindLoad, Path: args[0]})
			if _, ok := a.Session.Active(); !ok {
				return fmt.Errorf("inspect %s: module not loaded", args[0])
			}
			d.Dispatch(ctx, shell.Command{Kind: shell.KindHelp})
			d.Dispatch(ctx, shell.Command{Kind: shell.KindShowOptions})
			return nil
		},
	}
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var (
		limit     int
		sessionID string
		since     time.Duration
	)
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Показать журнал команд",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Store == nil {
				return errAuditDisabled
			}
			q := storage.AuditQuery{SessionID: sessionID, Limit: limit}
			if since > 0 {
				q.From = time.Now().UTC().Add(-since)
			}
			events, err := a.Store.QueryAudit(cmd.Context(), q)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Time", "Session", "Command", "Module", "Status"})
			for _, ev := range events {
				t.AppendRow(table.Row{ev.TS.Local().Format(time.DateTime), ev.SessionID, ev.Command, ev.Module, ev.Status})
			}
			t.Render()
			return nil
		},
	}
	audit.Flags().IntVar(&limit, "limit", 50, "Maximum number of events (1-200)")
	audit.Flags().StringVar(&sessionID, "session", "", "Filter by shell session ID")
	audit.Flags().DurationVar(&since, "since", 0, "Only events newer than this (e.g. 1h)")
	audit.AddCommand(newLastRunCmd(opts))
	return audit
}

func newLastRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "last-run <module path>",
		Short: "Показать последний запуск модуля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Store == nil {
				return errAuditDisabled
			}
			rec, err := a.Store.LatestRun(cmd.Context(), a.Env.ExpandPath(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)", rec.TS.Local().Format(time.DateTime), rec.Module, rec.Status, rec.Duration)
			if rec.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ": %s", rec.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}
