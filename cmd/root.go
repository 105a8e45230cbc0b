package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/awsssrD/road/config"
	"github.com/awsssrD/road/logging"
	"github.com/awsssrD/road/site"
	"github.com/awsssrD/road/templatex"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	signature string
	cfgFile   string
	v         *viper.Viper
	cfg       *config.Config
	log       zerolog.Logger
}

// NewRootCommand assembles the road command tree.
func NewRootCommand(signature string) *cobra.Command {
	a := &app{signature: signature, v: viper.New()}

	root := &cobra.Command{
		Use:   "road",
		Short: "Road documentation site configuration",
		Long: `road holds the navigation configuration of the Road documentation site.
It prints the configuration for the site renderer, checks that every link
points at an existing page, and builds a preview of the navigation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./road.yaml or ./road.json)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error, disabled")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	flags.String("site", "", "read the site configuration from a JSON or YAML file")
	flags.String("content-dir", "./docs", "directory holding the markdown pages")
	flags.String("output-dir", "./dist", "directory receiving the preview")
	flags.String("base-url", "/", "path the site is served under")

	bindings := map[string]string{
		"logLevel":   "log-level",
		"logFile":    "log-file",
		"siteFile":   "site",
		"contentDir": "content-dir",
		"outputDir":  "output-dir",
		"baseUrl":    "base-url",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newDumpCommand(a),
		newCheckCommand(a),
		newBuildCommand(a),
		newServeCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(signature string) int {
	defer logging.Close()
	if err := NewRootCommand(signature).Execute(); err != nil {
		return 1
	}
	return 0
}

func (a *app) initialize(cmd *cobra.Command) error {
	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("road")
	}
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.Configure(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: true,
		Output:  cmd.ErrOrStderr(),
	})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}

func (a *app) service() (*site.Service, error) {
	engine, err := templatex.Load(a.cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	svc := site.NewService(a.cfg, engine, logging.WithComponent("site"))
	svc.GeneratedBy = a.signature
	return svc, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), a.signature+"\n")
			return err
		},
	}
}
