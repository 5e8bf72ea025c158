package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 12 samples, 8 of class 0 and 4 of class 1
func imbalancedLabels() []int {
	return []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
}

func TestSamplePlain(t *testing.T) {
	y := imbalancedLabels()
	sampled, unsampled := Sample(3, y, ClassWeightNone, false, 0)

	assert.Len(t, sampled, len(y), "plain bootstrap draws n rows")
	for _, i := range sampled {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, len(y))
	}
	seen := make(map[int]bool)
	for _, i := range sampled {
		seen[i] = true
	}
	for _, i := range unsampled {
		assert.False(t, seen[i], "unsampled indices must be disjoint from the sampled ones")
	}
	assert.Len(t, unsampled, len(y)-len(seen))
}

func TestSampleStratify(t *testing.T) {
	y := imbalancedLabels()
	sampled, _ := Sample(5, y, ClassWeightStratify, false, 0)

	require.Len(t, sampled, len(y))
	counts := map[int]int{}
	for _, i := range sampled {
		counts[y[i]]++
	}
	assert.Equal(t, 8, counts[0], "stratified sampling preserves per-class counts")
	assert.Equal(t, 4, counts[1])
}

func TestSampleBalanced(t *testing.T) {
	y := imbalancedLabels()
	// rarest class holds 4 of 12 rows, so each class contributes
	// floor(1/3 * 12) = 4 rows
	sampled, _ := Sample(5, y, ClassWeightBalanced, false, 4.0/12.0)

	require.Len(t, sampled, 8)
	counts := map[int]int{}
	for _, i := range sampled {
		counts[y[i]]++
	}
	assert.Equal(t, 4, counts[0])
	assert.Equal(t, 4, counts[1])
}

func TestSampleDeterminism(t *testing.T) {
	y := imbalancedLabels()
	for _, bayes := range []bool{false, true} {
		s1, u1 := Sample(11, y, ClassWeightBalanced, bayes, 4.0/12.0)
		s2, u2 := Sample(11, y, ClassWeightBalanced, bayes, 4.0/12.0)
		assert.Equal(t, s1, s2, "identical seeds must reproduce the draw (bayes=%v)", bayes)
		assert.Equal(t, u1, u2)

		s3, _ := Sample(12, y, ClassWeightBalanced, bayes, 4.0/12.0)
		assert.NotEqual(t, s1, s3, "distinct seeds should produce distinct draws (bayes=%v)", bayes)
	}
}

func TestSampleBayesianWeights(t *testing.T) {
	y := imbalancedLabels()
	sampled, unsampled := Sample(7, y, ClassWeightNone, true, 0)

	assert.Len(t, sampled, len(y))
	seen := make(map[int]bool)
	for _, i := range sampled {
		seen[i] = true
	}
	for _, i := range unsampled {
		assert.False(t, seen[i])
	}
}

func TestDifference(t *testing.T) {
	pool := []int{0, 1, 2, 3, 4}
	assert.Equal(t, []int{0, 2, 4}, difference(pool, []int{1, 3, 3}))
	assert.Equal(t, pool, difference(pool, nil))
	assert.Nil(t, difference(pool, pool))
}
