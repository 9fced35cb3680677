package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gamedex/internal/cmd/config"
	"github.com/Iron-Ham/gamedex/internal/cmd/library"
	"github.com/Iron-Ham/gamedex/internal/cmd/observability"
	appconfig "github.com/Iron-Ham/gamedex/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "gamedex",
	Short: "Terminal game catalog",
	Long: `Gamedex keeps a catalog of games in a YAML file and lets you browse,
filter, edit and delete entries from an interactive terminal UI.

Run without a subcommand to open the UI.`,
	SilenceUsage: true,
	RunE:         runApp,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command, for tests and documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/gamedex/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	config.Register(rootCmd)
	library.Register(rootCmd)
	observability.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GAMEDEX")
	// Replace dots with underscores for nested keys in env vars
	// e.g., GAMEDEX_LIBRARY_PACK_SIZE for library.pack_size
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
