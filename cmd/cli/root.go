package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/DropDNA/internal/config"
	"github.com/himanishpuri/DropDNA/internal/service"
	"github.com/himanishpuri/DropDNA/pkg/dropdna"
	"github.com/himanishpuri/DropDNA/pkg/logger"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

// commandContext loads configuration once and builds services on demand.
type commandContext struct {
	configFlag *string
	cacheFlag  *string
	levelFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	log *logger.Logger
}

func newRootCommand() *cobra.Command {
	var configFlag, cacheFlag, levelFlag string
	ctx := &commandContext{
		configFlag: &configFlag,
		cacheFlag:  &cacheFlag,
		levelFlag:  &levelFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "dropdna",
		Short:         "Find the drop in a track and cache where to start its preview",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipConfigLoad"] == "true" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner(cmd.OutOrStdout())
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (env: DROPDNA_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cacheFlag, "cache", "", "Cache file path, overrides cache.path")
	rootCmd.PersistentFlags().StringVar(&levelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(*c.levelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
		c.configPath = path
		c.log = service.NewLogger(cfg).With("run", utils.NewRequestID()[:8])
	})
	return c.config, c.configErr
}

// newService builds the detection service; analysisDir may be empty.
func (c *commandContext) newService(analysisDir string) (dropdna.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return service.New(cfg, service.Overrides{
		CachePath:   *c.cacheFlag,
		AnalysisDir: analysisDir,
	}, c.log)
}
