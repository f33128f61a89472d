package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tunepull/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories, and Spotify credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Tools", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Environment", colorize)...)
			results := preflight.RunAll(cmd.Context(), cfg)
			lines = append(lines, preflightLines(results, colorize)...)
			lines = append(lines, renderStatusLine("Output container", statusInfo,
				fmt.Sprintf("%s (%s)", cfg.Tagging.OutputContainer, cfg.Tagging.AudioBitrate), colorize))
			lines = append(lines, renderStatusLine("Overwrite existing", statusInfo, yesNo(cfg.Tagging.OverwriteExisting), colorize))
			lines = append(lines, renderStatusLine("Log file", statusInfo, cfg.LogPath(), colorize))

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
