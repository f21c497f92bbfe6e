package main

import (
	"fmt"
	"io"

	"github.com/launchdarkly/rest-contract-tests/config"
	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/restapi"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const requestIDHeader = "X-Request-Id"

// commandParams holds the global flags and everything built from them before a subcommand
// runs.
type commandParams struct {
	out  io.Writer
	exit func(int)

	configFile     string
	envFile        string
	baseURL        string
	timeoutSeconds int
	failFast       bool
	debug          bool
	noColor        bool
	session        bool
	insecure       bool
	requestIDs     bool

	config   config.Config
	console  *framework.Console
	reporter *report.Reporter
	client   *restapi.Client
	zap      *zap.Logger
}

func newCommandParams(out io.Writer, exit func(int)) *commandParams {
	return &commandParams{out: out, exit: exit}
}

func (p *commandParams) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&p.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&p.envFile, "env-file", config.DefaultEnvFile, "dotenv file, ignored if missing")
	flags.StringVar(&p.baseURL, "url", "", "base URL of the service (default "+config.DefaultBaseURL+")")
	flags.IntVar(&p.timeoutSeconds, "timeout", 0, "per-call timeout in seconds, 0 for none")
	flags.BoolVar(&p.failFast, "fail-fast", false, "exit with status 1 at the first failed step")
	flags.BoolVar(&p.debug, "debug", false, "log every HTTP exchange")
	flags.BoolVar(&p.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&p.session, "session", false, "keep cookies between calls")
	flags.BoolVar(&p.insecure, "insecure", false, "skip TLS certificate verification")
	flags.BoolVar(&p.requestIDs, "request-ids", false, "send a unique "+requestIDHeader+" header with every call")
}

// resolve loads the configuration, applies the flags that were given explicitly, and builds
// the console, reporter, and client.
func (p *commandParams) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: p.configFile, EnvFile: p.envFile})
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = p.baseURL
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = p.timeoutSeconds
	}
	if flags.Changed("fail-fast") {
		cfg.ContinueOnError = !p.failFast
	}
	if flags.Changed("session") {
		cfg.Session = p.session
	}
	if flags.Changed("insecure") {
		cfg.InsecureSkipVerify = p.insecure
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.config = cfg

	p.console = framework.NewConsole(framework.WriterLogger(p.out), !p.noColor && !color.NoColor)
	p.reporter = report.NewReporter(p.console, report.Config{
		ContinueOnError: cfg.ContinueOnError,
		Exit:            p.exit,
	})

	transportLogger := framework.NullLogger()
	if p.debug {
		if p.zap, err = newDebugLogger(); err != nil {
			return fmt.Errorf("cannot create debug logger: %w", err)
		}
		transportLogger = zapPrintfLogger{p.zap.Sugar()}
	}

	clientConfig := restapi.Config{
		BaseURL: cfg.BaseURL,
		Headers: cfg.Headers,
		Transport: restapi.NewHTTPTransport(restapi.TransportOptions{
			Session:            cfg.Session,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Logger:             transportLogger,
		}),
	}
	if cfg.TimeoutSeconds > 0 {
		clientConfig.TimeoutSeconds = ldvalue.NewOptionalInt(cfg.TimeoutSeconds)
	}
	if p.requestIDs {
		clientConfig.RequestIDHeader = requestIDHeader
	}
	p.client = restapi.NewClient(clientConfig)
	return nil
}

func (p *commandParams) close() {
	if p.zap != nil {
		_ = p.zap.Sync()
	}
}

func newDebugLogger() (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zapConfig.DisableStacktrace = true
	return zapConfig.Build()
}

// zapPrintfLogger adapts a zap logger to framework.Logger.
type zapPrintfLogger struct {
	s *zap.SugaredLogger
}

func (z zapPrintfLogger) Printf(message string, args ...interface{}) {
	z.s.Debugf(message, args...)
}
