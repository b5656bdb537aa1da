package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "canopyshot",
		Short:         "Render canopy scene files to PNG images.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./canopyshot.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable development logging")
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newRenderCmd(a), newTreeCmd(a))
	return root
}

// initConfig reads the optional config file and CANOPY_* environment
// variables.
func (a *app) initConfig() error {
	v := a.v
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("canopyshot")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("CANOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) initLogger() error {
	var (
		logger *zap.Logger
		err    error
	)
	if a.v.GetBool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger
	return nil
}
