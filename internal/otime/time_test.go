package otime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescaleAndArithmetic(t *testing.T) {
	a := New(48, 24)
	assert.Equal(t, 2.0, a.Seconds())
	assert.Equal(t, New(96, 48), a.RescaledTo(48))

	sum := a.Add(New(1, 1))
	assert.Equal(t, New(72, 24), sum)

	diff := a.Sub(FromSeconds(0.5, 48))
	assert.Equal(t, New(36, 24), diff)

	assert.Equal(t, New(9, 24), New(9.6, 24).Floor())
	assert.Equal(t, New(10, 24), New(9.2, 24).Ceil())
}

func TestCompareAcrossRates(t *testing.T) {
	assert.True(t, New(24, 24).Equal(New(1, 1)))
	assert.True(t, New(23, 24).Less(New(1, 1)))
	assert.False(t, New(25, 24).Less(New(1, 1)))
	assert.Equal(t, New(1, 1), Max(New(23, 24), New(1, 1)))
	assert.Equal(t, New(23, 24), Min(New(23, 24), New(1, 1)))
}

func TestTimecode(t *testing.T) {
	assert.Equal(t, "00:00:04:04", New(100, 24).String())
	assert.Equal(t, "01:00:00:00", New(3600*25, 25).String())
	assert.Equal(t, "--:--:--:--", Invalid.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RationalTime
		wantErr error
	}{
		{name: "timecode", in: "00:00:04:04", want: New(100, 24)},
		{name: "frame number", in: "100", want: New(100, 24)},
		{name: "seconds", in: "2.5s", want: New(60, 24)},
		{name: "empty", in: "", wantErr: ErrInvalidTimecode},
		{name: "garbage", in: "aa:bb", wantErr: ErrInvalidTimecode},
		{name: "negative field", in: "00:-1:00:00", wantErr: ErrInvalidTimecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in, 24)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := Parse("10", 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
}
