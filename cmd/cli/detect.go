package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/DropDNA/pkg/models"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

type playback struct {
	StartMs int `json:"start_ms"`
	StopMs  int `json:"stop_ms"`
}

type detectOutput struct {
	models.DropResult
	Playback playback `json:"playback"`
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var (
		durationMs  int
		offsetDb    float64
		previewMs   int
		analysisDir string
		refresh     bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "detect <track-id|uri|url>",
		Short: "Detect the drop of a track",
		Example: `  dropdna detect 4uLU6hMCjMI75M1A2tKUQC --duration-ms 215000
  dropdna detect spotify:track:4uLU6hMCjMI75M1A2tKUQC --duration-ms 215000 --offset-db 4
  dropdna detect https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC --duration-ms 215000 --analysis-dir ./analysis --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := utils.ExtractTrackID(args[0])
			if err != nil {
				return err
			}
			if durationMs <= 0 {
				return errors.New("--duration-ms must be positive")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			params := cfg.Params()
			if cmd.Flags().Changed("offset-db") {
				params.LoudnessOffsetDb = offsetDb
			}
			if cmd.Flags().Changed("preview-ms") {
				params.PreviewLengthMs = previewMs
			}

			svc, err := ctx.newService(analysisDir)
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			runCtx, cancel := context.WithTimeout(runCtx, 2*time.Minute)
			defer cancel()

			track := models.TrackRef{ID: trackID, DurationMs: durationMs}
			ctx.log.Infof("Detecting drop for %s (offset %.1f dB, preview %d ms)", trackID, params.LoudnessOffsetDb, params.PreviewLengthMs)

			var result models.DropResult
			if refresh {
				result = svc.Refresh(runCtx, track, params)
			} else {
				result = svc.DetectDrop(runCtx, track, params)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, detectOutput{
					DropResult: result,
					Playback:   playback{StartMs: result.DropStartMs, StopMs: result.StopMs()},
				})
			}

			icon := "✅"
			if result.Method == models.MethodFallback || result.Method == models.MethodErrorFallback {
				icon = "⚠️"
			}
			fmt.Fprintf(out, "\n%s Drop for %s\n", icon, result.TrackID)
			fmt.Fprintf(out, "   Start:      %s (%d ms)\n", formatMs(result.DropStartMs), result.DropStartMs)
			fmt.Fprintf(out, "   Stop:       %s (%d ms)\n", formatMs(result.StopMs()), result.StopMs())
			fmt.Fprintf(out, "   Method:     %s\n", result.Method)
			fmt.Fprintf(out, "   Confidence: %.2f\n", result.Confidence)
			return nil
		},
	}

	cmd.Flags().IntVar(&durationMs, "duration-ms", 0, "Track duration in milliseconds")
	cmd.Flags().Float64Var(&offsetDb, "offset-db", models.DefaultLoudnessOffsetDb, "Loudness offset above the median segment loudness")
	cmd.Flags().IntVar(&previewMs, "preview-ms", models.DefaultPreviewLengthMs, "Preview length in milliseconds")
	cmd.Flags().StringVar(&analysisDir, "analysis-dir", "", "Read <track-id>.json analysis files from this directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached result and recompute")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("duration-ms")

	return cmd
}
