package main

import (
	"os"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/utils"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	root = &cobra.Command{
		Use:           "dnacompiler",
		Short:         "Map logic netlists onto genetic device libraries",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	configFile = root.PersistentFlags().String("config", "", "Configuration file (YAML or JSON) supplying flag defaults")
	verbose    = root.PersistentFlags().Bool("verbose", false, "Verbose output")
	trace      = root.PersistentFlags().Bool("trace", false, "Log every annealing iteration")
	logFile    = root.PersistentFlags().String("log", "", "Log file (default: stdout)")
	logLevel   = root.PersistentFlags().String("log-level", "info", "Log level: error, warning, info, debug or trace")
)

// bindFlags applies configuration values to every flag not set on the command line
func bindFlags(cmd *cobra.Command) {
	apply := func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				sv.Replace(viper.GetStringSlice(f.Name))
			} else {
				f.Value.Set(viper.GetString(f.Name))
			}
		}
	}
	cmd.PersistentFlags().VisitAll(apply)
	cmd.Flags().VisitAll(apply)
	for _, subCommand := range cmd.Commands() {
		bindFlags(subCommand)
	}
}

func loadConfiguration(cmd *cobra.Command) error {
	// Bind environment variables, DNACOMPILER_T0_STEPS sets --t0-steps
	viper.SetEnvPrefix("DNACOMPILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading configuration %s", *configFile)
		}
	}

	bindFlags(cmd)
	return nil
}

// newLogger creates the logger selected by --log-level, --verbose, --trace and --log.
// --verbose and --trace override --log-level.
func newLogger() (*utils.Logger, error) {
	level, err := utils.ParseLogLevel(*logLevel)
	if err != nil {
		return nil, err
	}
	if *verbose {
		level = utils.DebugLevel
	}
	if *trace {
		level = utils.TraceLevel
	}
	if *logFile != "" {
		return utils.NewFileLogger(level, *logFile)
	}
	return utils.NewLogger(level), nil
}

func init() {
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfiguration(root)
	}
	mapCmd.RunE = runMap
	logicCmd.RunE = runLogic
	root.AddCommand(mapCmd, logicCmd)
}

func main() {
	if err := root.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
