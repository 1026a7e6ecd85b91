package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"orbitgen/internal/config"
	"orbitgen/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration (defaults reproduce the reference fixture)",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return services.Wrap(services.ErrValidation, "config", "init",
					target+" already exists (use --overwrite to replace it)", nil)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "create config directory", err)
			}
			if err := config.CreateSample(target); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "write sample", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [output] path and the [[audio.tones]] schedule, then run `orbitgen generate`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination (default ~/.config/orbitgen/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget expands the --path flag or falls back to the default location.
func initTarget(flag string) (string, error) {
	var (
		target string
		err    error
	)
	if flag = strings.TrimSpace(flag); flag == "" {
		target, err = config.DefaultConfigPath()
	} else {
		target, err = config.ExpandPath(flag)
	}
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "config", "init", "resolve path", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			}
			if !ctx.configSeen {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Output: %s (%gs @ %d fps, keyframe every %d frames)\n",
				cfg.Output.Path, cfg.Video.DurationSeconds, cfg.Video.FPS, cfg.GOPFrames(cfg.Video.FPS))
			fmt.Fprintf(out, "Tones: %d, catalog: %s\n", len(cfg.Audio.Tones), yesNo(cfg.Catalog.Enabled))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
