package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAggregate(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []int
		wantAvg  float64
		wantCnt  int
		wantDist map[int]int
	}{
		{
			name:     "no reviews",
			ratings:  nil,
			wantAvg:  0,
			wantCnt:  0,
			wantDist: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		},
		{
			name:     "single review",
			ratings:  []int{4},
			wantAvg:  4.0,
			wantCnt:  1,
			wantDist: map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 0},
		},
		{
			name:     "average rounds to one decimal",
			ratings:  []int{5, 4, 4},
			wantAvg:  4.3,
			wantCnt:  3,
			wantDist: map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1},
		},
		{
			name:     "rounding up",
			ratings:  []int{5, 4},
			wantAvg:  4.5,
			wantCnt:  2,
			wantDist: map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1},
		},
		{
			name:     "repeating decimal",
			ratings:  []int{1, 1, 2},
			wantAvg:  1.3,
			wantCnt:  3,
			wantDist: map[int]int{1: 2, 2: 1, 3: 0, 4: 0, 5: 0},
		},
		{
			name:     "out of range values skipped",
			ratings:  []int{5, 0, 6, -1, 3},
			wantAvg:  4.0,
			wantCnt:  2,
			wantDist: map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := ComputeAggregate(tt.ratings)
			assert.Equal(t, tt.wantAvg, agg.Average)
			assert.Equal(t, tt.wantCnt, agg.Count)
			assert.Equal(t, tt.wantDist, agg.Distribution)
		})
	}
}
