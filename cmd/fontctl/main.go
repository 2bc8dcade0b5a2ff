// Command fontctl manages fonts and font groups on a fontgroup server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dukerupert/fontgroup/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings holds the global flags after viper has merged the environment.
type settings struct {
	URL      string
	User     string
	Password string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		var ce *client.Error
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	s := &settings{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "fontctl",
		Short:         "Manage fonts and font groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			s.URL = v.GetString("url")
			s.User = v.GetString("user")
			s.Password = v.GetString("password")
		},
	}

	setupFlags(rootCmd, v)

	newClient := func() *client.Client {
		c := client.New(s.URL, nil)
		if s.User != "" {
			c.SetBasicAuth(s.User, s.Password)
		}
		return c
	}

	rootCmd.AddCommand(fontsCommand(newClient), groupsCommand(newClient))
	return rootCmd
}

// setupFlags defines the global flags. Each can also be set as FONTCTL_<NAME>.
func setupFlags(rootCmd *cobra.Command, v *viper.Viper) {
	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Base URL of the fontgroup server")
	rootCmd.PersistentFlags().String("user", "", "Admin username for basic auth")
	rootCmd.PersistentFlags().String("password", "", "Admin password for basic auth")

	v.SetEnvPrefix("fontctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// BindPFlags only fails on a nil flag set.
	_ = v.BindPFlags(rootCmd.PersistentFlags())
}
