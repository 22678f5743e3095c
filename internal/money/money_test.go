package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int32
		want   int64
	}{
		{"ten percent of 3000", 3000, 1000, 300},
		{"half unit rounds up", 5, 1000, 1},
		{"just below half rounds down", 4, 1000, 0},
		{"zero amount", 0, 1000, 0},
		{"zero split", 3000, 0, 0},
		{"full split", 3000, 10000, 3000},
		{"odd amount ten percent", 2701, 1000, 270},
		{"rounds up at exactly half", 15, 1000, 2}, // 1.5 -> 2
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Share(tt.amount, tt.bps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShareRejectsBadInput(t *testing.T) {
	_, err := Share(-1, 1000)
	assert.Error(t, err)
	_, err = Share(100, -1)
	assert.Error(t, err)
	_, err = Share(100, 10001)
	assert.Error(t, err)
}

// The charity/net partition must reconstruct the gross exactly for every
// split, which holds by construction when net is derived by subtraction.
func TestSharePartitionIsExact(t *testing.T) {
	for gross := int64(0); gross <= 500; gross++ {
		for _, bps := range []int32{0, 1, 250, 1000, 3333, 5000, 9999, 10000} {
			charity, err := Share(gross, bps)
			require.NoError(t, err)
			net := gross - charity
			assert.Equal(t, gross, charity+net)
			assert.GreaterOrEqual(t, net, int64(0))
		}
	}
}

func TestSplitEven(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{"even division", 6000, 2, []int64{3000, 3000}},
		{"remainder to first winners", 1000, 3, []int64{334, 333, 333}},
		{"single winner takes all", 777, 1, []int64{777}},
		{"more winners than units", 2, 3, []int64{1, 1, 0}},
		{"zero total", 0, 4, []int64{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitEven(tt.total, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitEvenConservesTotal(t *testing.T) {
	for total := int64(0); total <= 250; total += 7 {
		for n := 1; n <= 9; n++ {
			parts, err := SplitEven(total, n)
			require.NoError(t, err)
			var sum int64
			for _, p := range parts {
				sum += p
			}
			assert.Equal(t, total, sum, "total=%d n=%d", total, n)
		}
	}
}

func TestSplitEvenRejectsBadInput(t *testing.T) {
	_, err := SplitEven(-1, 2)
	assert.Error(t, err)
	_, err = SplitEven(100, 0)
	assert.Error(t, err)
}
