package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pagecore/pkg/config"
	"pagecore/pkg/logging"
	"pagecore/pkg/resource"
)

// app carries what every subcommand needs once the root command has
// loaded configuration.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pagecore",
		Short:         "Parse, style, lay out and paint simple HTML documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), a.cfgFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./pagecore.yaml or ~/.config/pagecore/pagecore.yaml)")

	root.AddCommand(newRenderCmd(a), newTreeCmd(a))
	return root
}

// newPage builds a page sized from configuration.
func (a *app) newPage() (*resource.Page, *resource.DefaultFetcher) {
	fetcher := resource.NewFetcher(a.cfg.Fetch.Timeout, a.cfg.Fetch.UserAgent)
	page := resource.NewPage(fetcher, resource.Options{
		ViewportWidth:  float64(a.cfg.Viewport.Width),
		ViewportHeight: float64(a.cfg.Viewport.Height),
		ScrollStep:     a.cfg.Viewport.ScrollStep,
		Logger:         a.log,
	})
	return page, fetcher
}

// toLocator accepts URLs as they are and turns file paths into file://
// locators.
func toLocator(arg string) (string, error) {
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "data:") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
