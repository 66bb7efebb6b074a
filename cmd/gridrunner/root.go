package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/entrhq/gridrunner/pkg/config"
	"github.com/entrhq/gridrunner/pkg/harness"
	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/sauce"
	"github.com/entrhq/gridrunner/pkg/settings"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app is the state shared by subcommands after the root pre-run.
type app struct {
	store   settings.Store
	file    *settings.FileStore
	runCfg  *config.RunConfig
	harness *harness.Harness
	logger  *logging.Logger
}

type rootOptions struct {
	configPath   string
	envFile      string
	settingsPath string
	sets         map[string]string
	logStderr    bool
	apiURL       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:           "gridrunner",
		Short:         "Resolve browser session capabilities and report test verdicts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Close()
		},
	}

	bindRootFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(
		newResolveCmd(a),
		newModeCmd(a),
		newBuildIDCmd(a),
		newReportCmd(a),
		newRunCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func bindRootFlags(flags *pflag.FlagSet, opts *rootOptions) {
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML run file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded into the environment if present")
	flags.StringVar(&opts.settingsPath, "settings-file", "", "YAML settings file used as the override store")
	flags.StringToStringVar(&opts.sets, "set", nil, "Override a setting (name=value, repeatable)")
	flags.BoolVar(&opts.logStderr, "log-stderr", false, "Log to stderr instead of the run log file")
	flags.StringVar(&opts.apiURL, "sauce-api-url", "", "Override the Sauce Labs REST base URL for every data center")
	flags.SortFlags = false
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", opts.envFile, err)
		}
	}

	if opts.logStderr {
		a.logger = logging.NewWriterLogger("gridrunner", cmd.ErrOrStderr())
	} else {
		// On failure NewLogger still returns a stderr logger
		a.logger, _ = logging.NewLogger("gridrunner")
	}

	if opts.settingsPath != "" {
		fileStore, err := settings.NewFileStore(opts.settingsPath)
		if err != nil {
			return err
		}
		a.file = fileStore
		a.store = fileStore
	} else {
		a.store = settings.NewMemoryStore(nil)
	}

	a.runCfg = &config.RunConfig{}
	if opts.configPath != "" {
		cfg, err := config.LoadRunConfig(opts.configPath)
		if err != nil {
			return err
		}
		a.runCfg = cfg
	}
	a.runCfg.Apply(a.store)

	// Command-line overrides rank above the run file
	for name, value := range opts.sets {
		a.store.Set(name, value)
	}

	var factory *sauce.ClientFactory
	if opts.apiURL != "" {
		factoryOpts := []sauce.FactoryOption{sauce.WithLogger(a.logger.With("sauce"))}
		for _, dc := range []sauce.DataCenter{sauce.USWest, sauce.USEast, sauce.EUCentral, sauce.APACSoutheast} {
			factoryOpts = append(factoryOpts, sauce.WithEndpoint(dc, opts.apiURL))
		}
		factory = sauce.NewClientFactory(factoryOpts...)
	}

	a.harness = harness.New(harness.Options{
		Overrides:    a.store,
		BuildSources: a.runCfg.Sources(),
		Factory:      factory,
		Logger:       a.logger,
	})
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gridrunner version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gridrunner v%s\n", version)
		},
	}
}
