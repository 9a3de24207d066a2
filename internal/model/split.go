package model

import (
	"math"
	"math/rand/v2"
	"slices"
)

// TrainTestSplit shuffles rows with a seeded generator and holds out
// ceil(len(rows) * testFraction) of them for testing. Both halves are
// returned in ascending order.
func TrainTestSplit(rows []int, testFraction float64, seed uint64) (train, test []int) {
	n := len(rows)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest > n {
		nTest = n
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	test = make([]int, 0, nTest)
	train = make([]int, 0, n-nTest)
	for i, p := range perm {
		if i < nTest {
			test = append(test, rows[p])
		} else {
			train = append(train, rows[p])
		}
	}
	slices.Sort(test)
	slices.Sort(train)
	return train, test
}
