package random_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/shopgen/internal/random"
)

func Test_New_SameSeedAndStreamRepeats(t *testing.T) {
	a := random.New(42, 7)
	b := random.New(42, 7)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func Test_ForLocale_StreamsDifferPerLocale(t *testing.T) {
	en := random.ForLocale(1, "en_US")
	es := random.ForLocale(1, "es_ES")

	same := 0
	for i := 0; i < 20; i++ {
		if en.IntN(1_000_000) == es.IntN(1_000_000) {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func Test_IntBetween_StaysInclusive(t *testing.T) {
	src := random.New(3, 3)
	seen := map[int]bool{}

	for i := 0; i < 2000; i++ {
		v := random.IntBetween(src, 1, 5)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 7, random.IntBetween(src, 7, 7))
}

func Test_Uniform_StaysInRange(t *testing.T) {
	src := random.New(9, 9)

	for i := 0; i < 1000; i++ {
		v := random.Uniform(src, 5, 150)
		assert.GreaterOrEqual(t, v, 5.0)
		assert.Less(t, v, 150.0)
	}
}
