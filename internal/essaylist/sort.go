package essaylist

import (
	"sort"
	"time"

	"github.com/mithrel/stackshelf/pkg/api"
)

// SortByDate flips DateAscending and reorders essays in place by parsed
// date in the new direction. The sort is stable, so essays sharing a date
// keep their relative order. The same slice is returned for chaining.
func SortByDate(s ToggleState, essays api.Essays) (ToggleState, api.Essays) {
	s.DateAscending = !s.DateAscending
	asc := s.DateAscending

	// parse once; Time() is not cheap enough to call per comparison
	keyed := make([]datedEssay, len(essays))
	for i, e := range essays {
		keyed[i] = datedEssay{at: e.Time(), essay: e}
	}
	sort.SliceStable(keyed, func(i, j int) bool {
		if asc {
			return keyed[i].at.Before(keyed[j].at)
		}
		return keyed[i].at.After(keyed[j].at)
	})
	for i := range keyed {
		essays[i] = keyed[i].essay
	}
	return s, essays
}

type datedEssay struct {
	at    time.Time
	essay api.Essay
}

// SortByLikes flips LikesAscending and reorders essays in place by like
// count. Stable like SortByDate.
func SortByLikes(s ToggleState, essays api.Essays) (ToggleState, api.Essays) {
	s.LikesAscending = !s.LikesAscending
	asc := s.LikesAscending
	sort.SliceStable(essays, func(i, j int) bool {
		if asc {
			return essays[i].LikeCount < essays[j].LikeCount
		}
		return essays[i].LikeCount > essays[j].LikeCount
	})
	return s, essays
}
