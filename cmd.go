package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/poonai/gist/internal/account"
	"github.com/poonai/gist/internal/config"
	"github.com/poonai/gist/internal/gist"
)

// app carries what every subcommand shares: the credential flags, the
// config location and the terminal it writes to.
type app struct {
	configPath string
	selector   account.Selector
	verbose    bool
	apiURL     string
	webURL     string

	in          io.Reader
	out, errOut io.Writer
	interactive bool
	log         *zap.Logger
}

func newApp() *app {
	return &app{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd()),
		log:         zap.NewNop(),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand(newApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, renderErrMsg(err.Error()))
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gist",
		Short:         "simple GitHub Gist CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a.selector.Token == "" {
				a.selector.Token = os.Getenv("GIST_TOKEN")
			}
			a.log = newLogger(a.verbose, a.errOut)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.selector.Token, "token", "t", "", "OAuth access token (env GIST_TOKEN)")
	flags.StringVarP(&a.selector.Username, "user", "u", "", "GitHub username; selects a saved account unless --password is given")
	flags.StringVarP(&a.selector.Password, "password", "p", "", "personal access token used with --user")
	flags.StringVar(&a.configPath, "config", "", "path to the config file (default <config dir>/gist/config.json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log HTTP requests to stderr")
	flags.StringVar(&a.apiURL, "api-url", "", "GitHub REST API root")
	flags.StringVar(&a.webURL, "web-url", "", "GitHub host serving the OAuth device flow")
	_ = flags.MarkHidden("api-url")
	_ = flags.MarkHidden("web-url")

	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		a.newLoginCommand(),
		a.newUploadCommand(),
		a.newUpdateCommand(),
		a.newListCommand(),
		a.newDeleteCommand(),
		a.newAccountsCommand(),
		a.newLogoutCommand(),
	)
	return root
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.DebugLevel))
}

func (a *app) path() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}

func (a *app) loadConfig() (*config.Config, error) {
	path, err := a.path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func (a *app) saveConfig(cfg *config.Config) error {
	path, err := a.path()
	if err != nil {
		return err
	}
	a.log.Debug("saving config", zap.String("path", path), zap.Int("accounts", cfg.Len()))
	return config.Save(path, cfg)
}

func (a *app) gistOptions() []gist.Option {
	opts := []gist.Option{gist.WithLogger(a.log)}
	if a.apiURL != "" {
		opts = append(opts, gist.WithAPIURL(a.apiURL))
	}
	if a.webURL != "" {
		opts = append(opts, gist.WithWebURL(a.webURL))
	}
	return opts
}

func (a *app) resolve() (config.Login, error) {
	return account.Resolve(a.selector, a.loadConfig)
}

func (a *app) client(ctx context.Context, login config.Login) (*gist.Client, error) {
	a.log.Debug("using login", zap.Stringer("login", login))
	return gist.NewClient(ctx, login, a.gistOptions()...)
}
