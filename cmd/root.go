package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"example.com/compost/console/config"
	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "compost-console",
	Short: "Operator console for composting-process IoT devices.",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize Logger
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		// Load Config
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Logger = logger
		return nil
	},
}

var verbose bool

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// newStore wires the credential store, API client and query cache the
// way every command consumes them.
func newStore() *cache.Store {
	creds := client.NewCredentialStore(cfg.API.Username, cfg.API.Password)
	if token, err := client.LoadSessionToken(); err == nil && token != "" {
		creds.SetToken(token)
	}

	api := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, creds, logger)
	api.SetUnauthorizedHandler(func() {
		fmt.Fprintln(os.Stderr, "unauthorized: credentials missing or rejected, run 'compost-console login'")
	})

	return cache.NewStore(api, cache.New(cfg.Cache.TTL, logger), logger)
}
