package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWatermark(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "empty means epoch", in: "", want: time.Unix(0, 0).UTC()},
		{name: "epoch literal", in: EpochWatermark, want: time.Unix(0, 0).UTC()},
		{name: "sortable layout", in: "2024-05-01 09:00:00", want: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{name: "fractional seconds", in: "2024-05-01 09:00:00.250", want: time.Date(2024, 5, 1, 9, 0, 0, 250_000_000, time.UTC)},
		{name: "iso without zone", in: "2024-05-01T09:00:00", want: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", in: "2024-05-01T11:00:00+02:00", want: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", in: "  2024-05-01 09:00:00 ", want: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWatermark(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseWatermark_Invalid(t *testing.T) {
	for _, in := range []string{"yesterday", "2024-13-01 00:00:00", "1714550400"} {
		_, err := ParseWatermark(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, common.ErrInvalidWatermark))
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 1, 11, 0, 0, 999_999_999, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-05-01 09:00:00", FormatTimestamp(ts))
}

func TestFormatTimestamp_SortsLikeTime(t *testing.T) {
	a := FormatTimestamp(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC))
	b := FormatTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, a, b)
}
