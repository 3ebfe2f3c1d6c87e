package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource []uint32

func (f *fixedSource) NextU32() uint32 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		d      time.Duration
		want   Symbol
		wantOK bool
	}{
		{name: "zero is bounce", d: 0, wantOK: false},
		{name: "just below floor", d: 9*time.Millisecond + 999*time.Microsecond, wantOK: false},
		{name: "five millis rejected", d: 5 * time.Millisecond, wantOK: false},
		{name: "floor is short", d: 10 * time.Millisecond, want: Short, wantOK: true},
		{name: "typical tap", d: 300 * time.Millisecond, want: Short, wantOK: true},
		{name: "ceiling is inclusive", d: 500 * time.Millisecond, want: Short, wantOK: true},
		{name: "just above ceiling", d: 500*time.Millisecond + time.Nanosecond, want: Long, wantOK: true},
		{name: "typical hold", d: 1500 * time.Millisecond, want: Long, wantOK: true},
		{name: "safety cap hold is still long", d: time.Hour, want: Long, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.d)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClassifySweep(t *testing.T) {
	for d := time.Duration(0); d < NoiseFloor; d += 250 * time.Microsecond {
		_, ok := Classify(d)
		require.False(t, ok, "d=%s", d)
	}
	for d := NoiseFloor; d <= ShortCeiling; d += time.Millisecond {
		s, ok := Classify(d)
		require.True(t, ok)
		require.Equal(t, Short, s, "d=%s", d)
	}
	for d := ShortCeiling + time.Millisecond; d < 10*time.Second; d += 7 * time.Millisecond {
		s, ok := Classify(d)
		require.True(t, ok)
		require.Equal(t, Long, s, "d=%s", d)
	}
}

func TestPulseDuration(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, PulseDuration(Short))
	assert.Equal(t, 2000*time.Millisecond, PulseDuration(Long))
	assert.Equal(t, 250*time.Millisecond, Gap)
}

func TestPulsesClassifyBackToTheirSymbol(t *testing.T) {
	for _, s := range []Symbol{Short, Long} {
		got, ok := Classify(PulseDuration(s))
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
}

func TestDrawUsesParity(t *testing.T) {
	src := fixedSource{0, 1, 2, 3, 0xFFFFFFFE, 0xFFFFFFFF}
	want := []Symbol{Short, Long, Short, Long, Short, Long}
	for i, w := range want {
		assert.Equal(t, w, Draw(&src), "draw %d", i)
	}
	assert.Empty(t, src, "each draw consumes exactly one value")
}

func TestDrawIsUnbiasedOverAllLowBytes(t *testing.T) {
	counts := map[Symbol]int{}
	for v := uint32(0); v < 1<<16; v++ {
		src := fixedSource{v * 2654435761}
		counts[Draw(&src)]++
	}
	assert.Equal(t, counts[Short], counts[Long])
}

func TestFormatAndParse(t *testing.T) {
	seq := []Symbol{Short, Long, Long, Short}
	assert.Equal(t, ".--.", Format(seq))
	assert.Equal(t, "", Format(nil))

	got, err := Parse(" .- -. ")
	require.NoError(t, err)
	assert.Equal(t, seq, got)

	_, err = Parse(".x")
	require.ErrorIs(t, err, ErrBadSymbol)
}
