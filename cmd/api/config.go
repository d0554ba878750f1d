package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 int
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration
	NotificationsEnabled bool
	NotificationsURL     string
	NotificationsTimeout time.Duration
}

var (
	config  = Config{}
	rootCmd = &cobra.Command{
		Use:   "bookshelf-api",
		Short: "Bookshelf HTTP API",
		Long: `Serves a bookshelf over HTTP: add, list, fetch, update and delete books kept in memory.
Every flag can also be set through an environment variable BOOKSHELF_<FLAG> (e.g. BOOKSHELF_REQUEST_TIMEOUT=3s).`,
		PreRunE: processConfig,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(config)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	key := "port"
	rootCmd.Flags().Int(key, 8080, "Port on which the API listens")

	key = "request-timeout"
	rootCmd.Flags().Duration(key, 5*time.Second, "Maximum time to serve a single request")

	key = "shutdown-timeout"
	rootCmd.Flags().Duration(key, 10*time.Second, "Time given to in-flight requests on shutdown")

	key = "notifications-enabled"
	rootCmd.Flags().Bool(key, false, "Publish a ntfy message whenever a book is added")

	key = "notifications-url"
	rootCmd.Flags().String(key, "https://ntfy.sh/bookshelf_book_added", "The ntfy topic URL notifications are published to")

	key = "notifications-timeout"
	rootCmd.Flags().Duration(key, 2*time.Second, "Maximum time to deliver a single notification")
}

// initConfig reads the env files and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("bookshelf")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// processConfig reads the command line flags and environment variables into the config
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	config.Port = viper.GetInt("port")
	config.RequestTimeout = viper.GetDuration("request-timeout")
	config.ShutdownTimeout = viper.GetDuration("shutdown-timeout")
	config.NotificationsEnabled = viper.GetBool("notifications-enabled")
	config.NotificationsURL = viper.GetString("notifications-url")
	config.NotificationsTimeout = viper.GetDuration("notifications-timeout")

	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port %d", config.Port)
	}
	if config.NotificationsEnabled && config.NotificationsURL == "" {
		return fmt.Errorf("notifications-url is required when notifications are enabled")
	}
	return nil
}
