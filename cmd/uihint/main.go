package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/uihint/internal/logging"
	"github.com/hrygo/uihint/internal/profile"
	"github.com/hrygo/uihint/internal/version"
	"github.com/hrygo/uihint/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "uihint",
		Short: `Reshapes AI responses into UI rendering hints: tables for structured data, cards for markdown.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd units provide their environment through EnvironmentFile.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			instanceProfile := newProfile()
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}
			setupLogger(instanceProfile)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s, err := server.NewServer(ctx, instanceProfile)
			if err != nil {
				return errors.Wrap(err, "failed to create server")
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			signal.Notify(c, terminationSignals...)
			go func() {
				<-c
				cancel()
			}()

			printGreetings(instanceProfile)

			if err := s.Run(ctx); err != nil {
				slog.Error("failed to run server", "error", err)
				return err
			}
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8000)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("body-limit", "1M")
	viper.SetDefault("metrics", true)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("unix-sock", "", "path to the unix socket, overrides --addr and --port")
	rootCmd.PersistentFlags().String("log-level", "info", `log level, can be "debug", "info", "warn" or "error"`)
	rootCmd.PersistentFlags().String("log-format", "", `log format, "text" or "json" (default: json in prod, text otherwise)`)
	rootCmd.PersistentFlags().StringSlice("cors-origins", nil, "allowed CORS origins, CORS is disabled when empty")
	rootCmd.PersistentFlags().Float64("rate-limit", 0, "requests per second per client IP, 0 disables rate limiting")
	rootCmd.PersistentFlags().String("body-limit", "1M", "maximum request body size")
	rootCmd.PersistentFlags().Bool("metrics", true, "expose prometheus metrics on /metrics")

	for _, key := range []string{"mode", "addr", "port", "unix-sock", "log-level", "log-format", "cors-origins", "rate-limit", "body-limit", "metrics"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("uihint")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd.AddCommand(newFormatCmd(), newVersionCmd())
}

// newProfile reads the flag, env and default layers merged by viper.
// UIHINT_METRICS is parsed with strconv.ParseBool rules.
func newProfile() *profile.Profile {
	return &profile.Profile{
		Mode:           viper.GetString("mode"),
		Addr:           viper.GetString("addr"),
		Port:           viper.GetInt("port"),
		UNIXSock:       viper.GetString("unix-sock"),
		LogLevel:       viper.GetString("log-level"),
		LogFormat:      viper.GetString("log-format"),
		CORSOrigins:    viper.GetStringSlice("cors-origins"),
		RateLimit:      viper.GetFloat64("rate-limit"),
		BodyLimit:      viper.GetString("body-limit"),
		MetricsEnabled: viper.GetBool("metrics"),
		Version:        version.GetCurrentVersion(viper.GetString("mode")),
	}
}

func setupLogger(p *profile.Profile) {
	slog.SetDefault(logging.New(os.Stderr, p.LogFormat, p.SlogLevel()))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("uihint %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.UNIXSock) == 0 {
		if len(profile.Addr) == 0 {
			fmt.Printf("Server running on port %d\n", profile.Port)
			fmt.Printf("Process endpoint: http://localhost:%d/process\n", profile.Port)
		} else {
			fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
			fmt.Printf("Process endpoint: http://%s:%d/process\n", profile.Addr, profile.Port)
		}
	} else {
		fmt.Printf("Server running on unix socket: %s\n", profile.UNIXSock)
	}
	if profile.MetricsEnabled {
		fmt.Println("Metrics exposed on /metrics")
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
