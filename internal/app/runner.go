// Package app wires configuration, the chain session, the orchestrator, and
// the journal behind a cobra command tree. Every command emits one result
// envelope on stdout; diagnostics go to stderr.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/basefolio/aeromgr/internal/cache"
	"github.com/basefolio/aeromgr/internal/chain"
	"github.com/basefolio/aeromgr/internal/chain/signer"
	"github.com/basefolio/aeromgr/internal/config"
	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/model"
	"github.com/basefolio/aeromgr/internal/orchestrator"
	"github.com/basefolio/aeromgr/internal/out"
	"github.com/basefolio/aeromgr/internal/policy"
	"github.com/basefolio/aeromgr/internal/schema"
	"github.com/basefolio/aeromgr/internal/store"
	"github.com/basefolio/aeromgr/internal/version"
)

// GatewayFactory builds the session surface commands operate on. Tests
// substitute scripted gateways; the default factory dials the configured RPC.
type GatewayFactory func(ctx context.Context, settings config.Settings, log zerolog.Logger) (orchestrator.Gateway, func(), error)

type Runner struct {
	stdout     io.Writer
	stderr     io.Writer
	now        func() time.Time
	newGateway GatewayFactory
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout:     stdout,
		stderr:     stderr,
		now:        time.Now,
		newGateway: dialGateway,
	}
}

// dialGateway is the production factory: RPC backend, local signer, session,
// and the persistent pool-address cache when enabled.
func dialGateway(ctx context.Context, settings config.Settings, log zerolog.Logger) (orchestrator.Gateway, func(), error) {
	backend, err := chain.Dial(ctx, settings.RPCURL)
	if err != nil {
		return nil, nil, err
	}
	txSigner, err := signer.NewLocalSignerFromEnv(settings.KeySource)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	session, err := chain.NewSession(backend, txSigner, settings, log)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	var cacheStore *cache.Store
	if settings.CacheEnabled {
		cacheStore, err = cache.Open(settings.CachePath, settings.CacheLock, settings.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("pool cache unavailable, continuing without it")
		} else {
			session.SetPairCache(cache.NewPairs(cacheStore))
		}
	}
	cleanup := func() {
		backend.Close()
		if cacheStore != nil {
			_ = cacheStore.Close()
		}
	}
	return session, cleanup, nil
}

type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	log      zerolog.Logger
	root     *cobra.Command

	lastOperation string

	gw      orchestrator.Gateway
	orch    *orchestrator.Orchestrator
	cleanup func()
	journal *store.Journal
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	state.shutdown()
	if err == nil {
		return 0
	}
	state.renderError(err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) shutdown() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	if s.journal != nil {
		_ = s.journal.Close()
		s.journal = nil
	}
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Aerodrome position manager for agent plugins",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return err
			}
			s.settings = settings
			s.log = newLogger(settings, s.runner.stderr)

			op := trimRootPath(cmd.CommandPath())
			s.lastOperation = op
			return policy.CheckOperationAllowed(settings.EnableOperations, settings.ReadOnly, op)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "Chain RPC endpoint")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Transaction confirmation timeout")
	cmd.PersistentFlags().BoolVar(&s.flags.ReadOnly, "read-only", false, "Block all transaction-sending operations")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newInitCommand())
	cmd.AddCommand(s.newCreateManagerCommand())
	cmd.AddCommand(s.newBalancesCommand())
	cmd.AddCommand(s.newPositionsCommand())
	cmd.AddCommand(s.newStakedCommand())
	cmd.AddCommand(s.newDepositCommand())
	cmd.AddCommand(s.newWithdrawCommand())
	cmd.AddCommand(s.newAddLiquidityCommand())
	cmd.AddCommand(s.newRemoveLiquidityCommand())
	cmd.AddCommand(s.newStakeCommand())
	cmd.AddCommand(s.newUnstakeCommand())
	cmd.AddCommand(s.newClaimRewardsCommand())
	cmd.AddCommand(s.newFeesCommand())
	cmd.AddCommand(s.newClaimFeesCommand())
	cmd.AddCommand(s.newHistoryCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newLogger(settings config.Settings, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var sink io.Writer = w
	if settings.LogFormat != "json" {
		sink = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(sink).Level(level).With().Timestamp().Logger()
}

// orchestrator lazily builds the gateway and workflow layer, initializing the
// session once per process.
func (s *runtimeState) orchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	if s.orch != nil {
		return s.orch, nil
	}
	factory := s.runner.newGateway
	if factory == nil {
		factory = dialGateway
	}
	gw, cleanup, err := factory(ctx, s.settings, s.log)
	if err != nil {
		return nil, err
	}
	s.gw = gw
	s.cleanup = cleanup
	if _, err := gw.Initialize(ctx); err != nil {
		return nil, err
	}
	s.orch = orchestrator.New(gw, s.log)
	return s.orch, nil
}

// opResult is what each command handler returns for enveloping and
// journaling.
type opResult struct {
	data     any
	success  bool
	partial  bool
	txHash   string
	pool     string
	warnings []string
}

type opHandler func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error)

// runOperation is the shared command body: session acquisition, the handler,
// the journal write, and the envelope.
func (s *runtimeState) runOperation(cmd *cobra.Command, fn opHandler) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	op := trimRootPath(cmd.CommandPath())
	orch, err := s.orchestrator(ctx)
	if err != nil {
		return err
	}
	res, err := fn(ctx, orch)
	if err != nil {
		return err
	}
	if policy.Mutating(op) {
		s.journalRecord(op, res)
	}
	return s.emit(op, res)
}

func (s *runtimeState) journalRecord(op string, res opResult) {
	if !s.settings.JournalEnabled {
		return
	}
	if s.journal == nil {
		journal, err := store.Open(s.settings.JournalPath, s.settings.JournalLock)
		if err != nil {
			s.log.Warn().Err(err).Msg("journal unavailable, skipping record")
			return
		}
		s.journal = journal
	}
	if err := s.journal.Record(op, res.pool, s.settings.ChainID, res.success, res.txHash, res.data); err != nil {
		s.log.Warn().Err(err).Msg("journal write failed")
	}
}

func (s *runtimeState) emit(op string, res opResult) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  res.success,
		Data:     res.data,
		Warnings: res.warnings,
		Meta: model.EnvelopeMeta{
			Operation: op,
			ChainID:   s.settings.ChainID,
			Timestamp: s.runner.now().UTC(),
			Partial:   res.partial,
		},
	}
	if session, ok := s.gw.(*chain.Session); ok && session != nil {
		env.Meta.Owner = session.Owner().Hex()
		if manager, ok := session.Manager(); ok {
			env.Meta.Manager = manager.Hex()
		}
	}
	return out.Render(s.runner.stdout, env, s.settings.OutputMode)
}

func (s *runtimeState) renderError(err error) {
	op := s.lastOperation
	if op == "" {
		op = version.CLIName
	}
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
	}
	mode := s.settings.OutputMode
	if mode == "" {
		mode = "json"
	}
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Error:   &model.ErrorBody{Code: clierr.ExitCode(err), Message: message},
		Meta: model.EnvelopeMeta{
			Operation: op,
			ChainID:   s.settings.ChainID,
			Timestamp: s.runner.now().UTC(),
		},
	}
	_ = out.Render(s.runner.stderr, env, mode)
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.Join(args, " ")
			data, err := schema.Build(s.root, path)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emit(trimRootPath(cmd.CommandPath()), opResult{data: data, success: true})
		},
	}
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func trimRootPath(path string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(path), version.CLIName))
	if trimmed == "" {
		return version.CLIName
	}
	return trimmed
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
