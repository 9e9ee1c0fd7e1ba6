package services

import (
	"math/rand/v2"

	"matchfeed_server/models"
)

// Randomizer picks the displayed subset of an over-fetched batch
type Randomizer struct {
	// Shuffle permutes n elements uniformly. Defaults to rand.Shuffle.
	Shuffle func(n int, swap func(i, j int))
}

// DisplaySize returns how many candidates a page shows for the sort mode
func DisplaySize(sortMode string) int {
	if sortMode == models.SortNewest {
		return NewestDisplaySize
	}
	return DefaultDisplaySize
}

// Present returns at most DisplaySize(sortMode) candidates. The newest mode
// keeps fetch order; every other mode shows a uniform random subset.
// The input slice is never modified.
func (r *Randomizer) Present(batch []models.Profile, sortMode string) []models.Profile {
	display := DisplaySize(sortMode)
	out := make([]models.Profile, len(batch))
	copy(out, batch)

	if sortMode != models.SortNewest {
		shuffle := r.Shuffle
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	if len(out) > display {
		out = out[:display]
	}
	return out
}
