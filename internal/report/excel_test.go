package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gnezdo/gnezdo/internal/booking"
)

func mustDate(t *testing.T, s string) booking.Date {
	t.Helper()
	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestWriteOccupancy(t *testing.T) {
	occ := Occupancy{
		PropertyName: "Vila Zlatibor",
		Horizon: booking.Horizon{
			Start: mustDate(t, "2024-03-01"),
			End:   mustDate(t, "2024-03-31"),
		},
		Bookings: []booking.Interval{
			{
				ID:         "b1",
				PropertyID: "p1",
				Start:      mustDate(t, "2024-03-01"),
				End:        mustDate(t, "2024-03-05"),
				Source:     booking.SourceManual,
			},
			{
				ID:         "b2",
				PropertyID: "p1",
				Start:      mustDate(t, "2024-03-10"),
				End:        mustDate(t, "2024-03-15"),
				Source:     booking.SourceAirbnb,
			},
		},
		Gaps: []booking.Gap{
			{Start: mustDate(t, "2024-03-05"), End: mustDate(t, "2024-03-10"), Nights: 5},
			{Start: mustDate(t, "2024-03-15"), End: mustDate(t, "2024-03-31"), Nights: 16},
		},
		NightsOccupied: 9,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOccupancy(&buf, occ))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.ElementsMatch(t, []string{"Bookings", "Gaps"}, f.GetSheetList())

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two bookings
	require.Equal(t, []string{"Property", "Check-in", "Check-out", "Nights", "Source"}, rows[0])
	require.Equal(t, []string{"Vila Zlatibor", "2024-03-01", "2024-03-05", "4", "manual"}, rows[1])
	require.Equal(t, "airbnb", rows[2][4])

	gapRows, err := f.GetRows("Gaps")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(gapRows), 4)
	require.Equal(t, []string{"2024-03-05", "2024-03-10", "5"}, gapRows[1])
	require.Equal(t, []string{"2024-03-15", "2024-03-31", "16"}, gapRows[2])
	require.Contains(t, gapRows[len(gapRows)-1][0], "9 of 30 nights occupied")
}
