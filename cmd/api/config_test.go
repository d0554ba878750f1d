package main

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/viper"
)

func TestProcessConfig(t *testing.T) {

	t.Run("uses the flag defaults", func(t *testing.T) {
		is := is.New(t)
		viper.Reset()

		err := processConfig(rootCmd, nil)
		is.NoErr(err)
		is.Equal(config.Port, 8080)
		is.Equal(config.RequestTimeout, 5*time.Second)
		is.Equal(config.ShutdownTimeout, 10*time.Second)
		is.True(!config.NotificationsEnabled)
		is.Equal(config.NotificationsTimeout, 2*time.Second)
	})

	t.Run("environment variables override the defaults", func(t *testing.T) {
		is := is.New(t)
		viper.Reset()
		initConfig()
		t.Setenv("BOOKSHELF_PORT", "9090")
		t.Setenv("BOOKSHELF_REQUEST_TIMEOUT", "750ms")
		t.Setenv("BOOKSHELF_NOTIFICATIONS_ENABLED", "true")

		err := processConfig(rootCmd, nil)
		is.NoErr(err)
		is.Equal(config.Port, 9090)
		is.Equal(config.RequestTimeout, 750*time.Millisecond)
		is.True(config.NotificationsEnabled)
	})

	t.Run("expected invalid port error", func(t *testing.T) {
		is := is.New(t)
		viper.Reset()
		initConfig()
		t.Setenv("BOOKSHELF_PORT", "70000")

		err := processConfig(rootCmd, nil)
		is.True(err != nil)
	})
}
