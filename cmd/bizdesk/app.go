package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/config"
	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/core/history"
	"github.com/sadopc/bizdesk/internal/core/state"
	"github.com/sadopc/bizdesk/internal/logging"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/output"
	"github.com/sadopc/bizdesk/internal/service"
	"github.com/sadopc/bizdesk/internal/upload"
	"github.com/sadopc/bizdesk/internal/validate"
)

type globalFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	proxy      string
	logLevel   string
	state      string
	json       bool
}

// app holds what every command needs, built once in setup.
type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer

	cfg       config.Config
	logger    *zap.Logger
	client    *api.Client
	transport *upload.Transport
	svc       *service.Services
	board     *notify.Board

	kv      state.KV
	session *state.Session
	history *history.Store
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, logger: logging.Nop(), board: notify.New()}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.applyFlags(cmd, &cfg)
	a.cfg = cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	a.logger = logger

	client := api.New(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetProxy(cfg.Proxy)
	client.SetLogger(logger.Named("api"))
	if cfg.TLS != nil && !cfg.TLS.IsEmpty() {
		tlsCfg, err := cfg.TLS.BuildTLSConfig()
		if err != nil {
			return err
		}
		client.SetTLSConfig(tlsCfg)
	}
	a.client = client
	a.transport = upload.NewTransport(client, upload.WithTimeout(cfg.UploadTimeout))
	a.svc = service.New(client)
	logger.Debug("configured", zap.String("base_url", cfg.BaseURL), zap.Duration("timeout", cfg.Timeout))
	return nil
}

func (a *app) loadConfig() (config.Config, error) {
	if a.flags.configPath == "" {
		return config.Load(), nil
	}
	cfg, err := config.LoadFile(a.flags.configPath)
	if err != nil {
		return cfg, err
	}
	_ = godotenv.Load()
	return config.ApplyEnv(cfg)
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.flags.baseURL
	}
	if flags.Changed("timeout") && a.flags.timeout > 0 {
		cfg.Timeout = a.flags.timeout
	}
	if flags.Changed("proxy") {
		cfg.Proxy = a.flags.proxy
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("state") {
		cfg.State.Backend = a.flags.state
	}
}

func (a *app) format() output.Format {
	if a.flags.json {
		return output.JSON
	}
	return output.Text
}

func (a *app) limits() validate.Limits {
	return validate.Limits{MaxFiles: a.cfg.MaxFiles, MaxBytes: a.cfg.MaxFileBytes()}
}

func (a *app) controllerOptions() []controller.Option {
	return []controller.Option{
		controller.WithBoard(a.board),
		controller.WithLogger(a.logger.Named("controller")),
		controller.WithLocale(a.cfg.Locale),
		controller.WithPageSize(a.cfg.PageSize),
	}
}

// sessionStore opens the configured session backend on first use.
func (a *app) sessionStore(ctx context.Context) (*state.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	kv, err := state.Open(ctx, state.Options{
		Backend:  a.cfg.State.Backend,
		Path:     a.cfg.State.Path,
		RedisURL: a.cfg.State.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	a.kv = kv
	a.session = state.NewSession(kv)
	return a.session, nil
}

// historyStore opens the upload history database on first use.
func (a *app) historyStore() (*history.Store, error) {
	if a.history != nil {
		return a.history, nil
	}
	if dir := filepath.Dir(a.cfg.HistoryPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}
	store, err := history.NewStore(a.cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	a.history = store
	return store, nil
}

// selectedCompany returns the company id from flag, or the stored selection
// when flag is empty.
func (a *app) selectedCompany(ctx context.Context, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	session, err := a.sessionStore(ctx)
	if err != nil {
		return "", err
	}
	id, _, err := session.SelectedCompany(ctx)
	return id, err
}

func (a *app) close() {
	if a.history != nil {
		a.history.Close()
	}
	if a.kv != nil {
		a.kv.Close()
	}
	_ = a.logger.Sync()
}

// printResult writes v as JSON in --json mode and calls text otherwise.
func (a *app) printResult(v any, text func(io.Writer)) error {
	if a.format() == output.JSON {
		return output.PrintJSON(a.stdout, v)
	}
	text(a.stdout)
	return nil
}
