package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "17:30", want: 1050},
		{in: "00:00", want: 0},
		{in: "9am", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts.Minutes())
			assert.Equal(t, tt.in, ts.String())
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := MustTimeString("16:30")

	end, err := start.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, "17:00", end.String())
	assert.True(t, start.IsBefore(end))
	assert.True(t, end.IsAfter(start))

	_, err = start.AddMinutes(8 * 60)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	day := time.Date(2026, 3, 10, 22, 15, 0, 0, loc)
	got := MustTimeString("09:45").On(day)

	assert.Equal(t, time.Date(2026, 3, 10, 9, 45, 0, 0, loc), got)
}

func TestTimeString_ZeroAndScan(t *testing.T) {
	var ts TimeString
	assert.True(t, ts.IsZero())
	assert.Error(t, ts.Validate())

	require.NoError(t, ts.Scan("12:15"))
	assert.Equal(t, 735, ts.Minutes())

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "12:15", v)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
	assert.Error(t, ts.Scan(42))
}
