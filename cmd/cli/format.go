package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// formatMs renders a millisecond offset as m:ss.mmm.
func formatMs(ms int) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// formatAge renders how long ago an epoch-millisecond timestamp was.
func formatAge(epochMs int64, now time.Time) string {
	return humanize.RelTime(time.UnixMilli(epochMs), now, "ago", "from now")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
