// Package cmd wires the sunwell CLI. Each command loads the persisted
// backlog, performs one operation through the store, and saves the
// result; the long-running `run` command adds workers, lease reclaim,
// and a state-file watcher on top.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lbliii/sunwell/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sunwell",
	Short: "Hierarchical goal backlog scheduler",
	Long: `Sunwell maintains a backlog of goals organized as epics, milestones,
and tasks with dependency and artifact tracking. Workers claim ready
goals under leases; the resolver keeps readiness, blocking, and skip
propagation consistent after every change.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/sunwell/config.yaml)")
	rootCmd.PersistentFlags().String("state-dir", "", "state directory (default .sunwell)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("state-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/sunwell")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SUNWELL")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SUNWELL_SCHEDULER_LEASE_TTL_MINUTES for scheduler.lease_ttl_minutes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
