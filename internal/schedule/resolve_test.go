package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "iso", in: "2026-06-20", want: "2026-06-20"},
		{name: "iso datetime prefix", in: "2026-06-20T19:00:00-04:00", want: "2026-06-20"},
		{name: "slashes", in: "2026/06/20", want: "2026-06-20"},
		{name: "bare digits", in: "20260620", want: "2026-06-20"},
		{name: "surrounding text", in: "sched 20260620 final", want: "2026-06-20"},
		{name: "garbage", in: "next friday", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "impossible month", in: "20261320", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want Clock
	}{
		{"19:30", Clock{Hour: 19, Minute: 30}},
		{"19:30:45", Clock{Hour: 19, Minute: 30, Second: 45}},
		{"7:30 PM", Clock{Hour: 19, Minute: 30}},
		{"7:30:15 pm", Clock{Hour: 19, Minute: 30, Second: 15}},
		{"7:30 P.M.", Clock{Hour: 19, Minute: 30}},
		{"0730", Clock{Hour: 7, Minute: 30}},
		// the lenient path: anything unparseable is midnight
		{"doors at dusk", Clock{}},
		{"", Clock{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseClock(tt.in), "input %q", tt.in)
	}
}

func TestResolveUsesDefaultZone(t *testing.T) {
	got, err := Resolve("2026-06-20", "19:30", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultZone(), got.Location())
	assert.Equal(t, 19, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestResolveIsIdempotentOnItsOwnOutput(t *testing.T) {
	loc := DefaultZone()
	first, err := Resolve("2026-06-20", "7:30 PM", loc)
	require.NoError(t, err)

	again, err := Resolve(first.Format("2006-01-02"), first.Format("15:04:05"), loc)
	require.NoError(t, err)
	assert.True(t, first.Equal(again))
}

func TestSpanRollsOverMidnight(t *testing.T) {
	loc := DefaultZone()

	start, end, err := Span("2026-06-20", "21:00", "01:00", loc)
	require.NoError(t, err)
	assert.True(t, end.After(start))
	assert.Equal(t, 4*time.Hour, end.Sub(start))
	assert.Equal(t, 21, start.Hour())
	assert.Equal(t, 1, end.Hour())
	assert.Equal(t, start.Day()+1, end.Day())
}

func TestSpanEqualTimesRollOver(t *testing.T) {
	start, end, err := Span("2026-06-20", "20:00", "20:00", DefaultZone())
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestSpanNormalOrderKept(t *testing.T) {
	start, end, err := Span("2026-06-20", "19:00", "23:00", DefaultZone())
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, end.Sub(start))
}

func TestSpanBadDateFails(t *testing.T) {
	_, _, err := Span("sometime in June", "19:00", "23:00", nil)
	require.Error(t, err)
}

func TestFormat12h(t *testing.T) {
	assert.Equal(t, "7:30 PM", Format12h("19:30:00"))
	assert.Equal(t, "7:00 AM", Format12h("0700"))
	assert.Equal(t, "", Format12h(""))
	assert.Equal(t, "tba", Format12h("tba"))
}
