package queue

import (
	"math/rand/v2"
	"slices"
)

// RandomSource picks a uniform integer in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// ShuffleBag holds the queue indices not yet played in the current shuffle cycle.
// Indices are kept sorted so that a deterministic RandomSource gives
// reproducible picks.
type ShuffleBag struct {
	notPlayed []int
	rnd       RandomSource
}

// NewShuffleBag creates an empty bag. A nil source uses math/rand/v2.
func NewShuffleBag(rnd RandomSource) *ShuffleBag {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &ShuffleBag{rnd: rnd}
}

// Reset refills the bag with every index of a queue of size n.
func (b *ShuffleBag) Reset(n int) {
	b.notPlayed = b.notPlayed[:0]
	for i := range n {
		b.notPlayed = append(b.notPlayed, i)
	}
}

// Clear empties the bag.
func (b *ShuffleBag) Clear() {
	b.notPlayed = b.notPlayed[:0]
}

// Len returns the number of indices not yet played.
func (b *ShuffleBag) Len() int {
	return len(b.notPlayed)
}

// Indices returns a sorted copy of the not-played indices, nil when empty.
func (b *ShuffleBag) Indices() []int {
	if len(b.notPlayed) == 0 {
		return nil
	}
	return slices.Clone(b.notPlayed)
}

// Add marks indices as not played. Already present indices are ignored.
func (b *ShuffleBag) Add(indices ...int) {
	for _, i := range indices {
		pos, found := slices.BinarySearch(b.notPlayed, i)
		if !found {
			b.notPlayed = slices.Insert(b.notPlayed, pos, i)
		}
	}
}

// Remove marks index i as played. Returns false if it was not in the bag.
func (b *ShuffleBag) Remove(i int) bool {
	pos, found := slices.BinarySearch(b.notPlayed, i)
	if !found {
		return false
	}
	b.notPlayed = slices.Delete(b.notPlayed, pos, pos+1)
	return true
}

// RemoveShift follows the removal of queue index i: i is dropped and every
// greater index moves down by one.
func (b *ShuffleBag) RemoveShift(i int) {
	b.Remove(i)
	for k, idx := range b.notPlayed {
		if idx > i {
			b.notPlayed[k] = idx - 1
		}
	}
}

// Move follows a reorder of the queue where the track at from ends up at to.
func (b *ShuffleBag) Move(from, to int) {
	if from == to {
		return
	}
	for k, idx := range b.notPlayed {
		b.notPlayed[k] = movedIndex(idx, from, to)
	}
	slices.Sort(b.notPlayed)
}

// Pick returns a uniformly chosen not-played index without removing it.
func (b *ShuffleBag) Pick() (int, bool) {
	if len(b.notPlayed) == 0 {
		return -1, false
	}
	return b.notPlayed[b.rnd.IntN(len(b.notPlayed))], true
}

// Take marks current as played and picks the next index of the cycle.
// When the cycle is exhausted and refill is set, a new cycle over size
// indices starts without current (unless it is the only one). When the cycle
// is exhausted and refill is unset, Take reports false.
func (b *ShuffleBag) Take(current, size int, refill bool) (int, bool) {
	b.Remove(current)
	if len(b.notPlayed) == 0 {
		if !refill {
			return -1, false
		}
		b.Reset(size)
		if size > 1 {
			b.Remove(current)
		}
	}
	return b.Pick()
}

// movedIndex maps an index through a move of from to to.
func movedIndex(idx, from, to int) int {
	switch {
	case idx == from:
		return to
	case from < to && idx > from && idx <= to:
		return idx - 1
	case to < from && idx >= to && idx < from:
		return idx + 1
	default:
		return idx
	}
}
