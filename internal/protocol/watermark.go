package protocol

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
)

// Layout is the sortable text form of every timestamp on the wire.
const Layout = "2006-01-02 15:04:05"

// EpochWatermark is what a client that has never synced sends.
const EpochWatermark = "1970-01-01 00:00:00"

// Besides Layout we accept ISO forms some clients produce. Fractional
// seconds are accepted by all of them.
var watermarkLayouts = []string{Layout, time.RFC3339, "2006-01-02T15:04:05"}

// ParseWatermark converts a client watermark into a UTC instant. An empty
// string means the epoch. Zone-less inputs are read as UTC.
func ParseWatermark(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = EpochWatermark
	}
	for _, layout := range watermarkLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidWatermark, s)
}

// FormatTimestamp renders t in Layout, in UTC, truncated to the second.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(Layout)
}
