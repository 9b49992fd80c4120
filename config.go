package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind        string
	listTimeout time.Duration
	openaiKey   string
	openaiModel string
	openaiURL   string
	port        int
	prefix      string
	profile     bool
	statsPeriod time.Duration
	tlsCert     string
	tlsKey      string
	verbose     bool
	version     bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.listTimeout <= 0 {
		return fmt.Errorf("invalid list timeout: %s", c.listTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TOPTEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "topten",
		Short:         "A realtime multiplayer game of guessing ranked top-10 lists.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TOPTEN_BIND)")
	fs.DurationVar(&cfg.listTimeout, "list-timeout", 10*time.Second, "time allowed for upstream list generation before falling back (env: TOPTEN_LIST_TIMEOUT)")
	fs.StringVar(&cfg.openaiKey, "openai-key", "", "api key for the list generation service; empty disables upstream calls (env: TOPTEN_OPENAI_KEY)")
	fs.StringVar(&cfg.openaiModel, "openai-model", "gpt-4o-mini", "model requested from the list generation service (env: TOPTEN_OPENAI_MODEL)")
	fs.StringVar(&cfg.openaiURL, "openai-url", "https://api.openai.com/v1", "base url of an openai-compatible list generation service (env: TOPTEN_OPENAI_URL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TOPTEN_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TOPTEN_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TOPTEN_PROFILE)")
	fs.DurationVar(&cfg.statsPeriod, "stats-period", time.Minute, "interval between active room count log lines (env: TOPTEN_STATS_PERIOD)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TOPTEN_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TOPTEN_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TOPTEN_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TOPTEN_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("topten v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
