package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/DropDNA/pkg/utils"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached drop results",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newService("")
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			entries, err := svc.CachedResults()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "📭 Cache is empty")
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				age := formatAge(e.Result.ComputedAtEpochMs, now)
				if e.Expired {
					age += " (expired)"
				}
				rows = append(rows, []string{
					e.Result.TrackID,
					formatMs(e.Result.DropStartMs),
					string(e.Result.Method),
					strconv.FormatFloat(e.Result.Confidence, 'f', 2, 64),
					strconv.FormatFloat(e.LoudnessOffsetDb, 'f', -1, 64),
					strconv.Itoa(e.Result.PreviewLengthMs),
					age,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Track", "Drop", "Method", "Confidence", "Offset dB", "Preview ms", "Computed"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d cached result(s)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <track-id|uri|url>",
		Aliases: []string{"rm"},
		Short:   "Remove every cached result of a track",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, err := utils.ExtractTrackID(args[0])
			if err != nil {
				return err
			}

			svc, err := ctx.newService("")
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			n, err := svc.Forget(trackID)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No cached results for %s\n", trackID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %d cached result(s) for %s\n", n, trackID)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the cache without --yes")
			}

			svc, err := ctx.newService("")
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			n, err := svc.ClearCache()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Cleared %d cached result(s)\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the cache")
	return cmd
}
