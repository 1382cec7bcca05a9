package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDosDateTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1998, time.June, 15, 13, 42, 30, 0, time.UTC),
		time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC),
	}

	for _, want := range cases {
		date, timeField := EncodeDosDateTime(want)
		got := DecodeDosDateTime(date, timeField)
		require.True(t, got.Equal(want), "round trip %v -> %v", want, got)
	}
}

func TestEncodeDosDateTimeClampsPreEpoch(t *testing.T) {
	date, _ := EncodeDosDateTime(time.Date(1975, time.March, 1, 0, 0, 0, 0, time.UTC))
	year := 1980 + int(date>>9&0x7F)
	assert.Equal(t, 1980, year)
}

func TestEncodeDosDateTimeTruncatesOddSeconds(t *testing.T) {
	_, timeField := EncodeDosDateTime(time.Date(2000, time.May, 5, 10, 10, 11, 0, time.UTC))
	seconds := int(timeField&0x1F) * 2
	assert.Equal(t, 10, seconds)
}

func TestDecodeDosDateTimeIsUTC(t *testing.T) {
	got := DecodeDosDateTime(0, 0)
	assert.Equal(t, time.UTC, got.Location())
}
