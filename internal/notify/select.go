package notify

import (
	"cmp"
	"slices"
	"time"
)

// FirstRefreshToken returns the first non-empty token in fetch order.
func FirstRefreshToken(tokens []string) (string, bool) {
	for _, t := range tokens {
		if t != "" {
			return t, true
		}
	}
	return "", false
}

// SelectArticle picks the pending article with the latest expiry that is
// still in the future. Candidates are scanned in table order and a later
// article with an equal expiry replaces the earlier one.
func SelectArticle(articles []Article, now time.Time) (Article, bool) {
	var (
		best  Article
		found bool
	)
	for _, a := range articles {
		if !a.Expiry.After(now) {
			continue
		}
		if found && a.Expiry.Before(best.Expiry) {
			continue
		}
		best, found = a, true
	}
	return best, found
}

// MergeRecipients unions the given address lists into a sorted list
// without duplicates. Empty addresses are dropped.
func MergeRecipients(lists ...[]string) []string {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		for _, addr := range l {
			if addr != "" {
				out = append(out, addr)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// PartitionEvents splits a batch into every practice and the first
// non-practice event. Only one non-practice event is ever announced.
func PartitionEvents(events []Event) (practices []Event, other *Event) {
	for i := range events {
		if events[i].IsPractice {
			practices = append(practices, events[i])
			continue
		}
		if other == nil {
			e := events[i]
			other = &e
		}
	}
	return practices, other
}

// SortEvents orders events by id, which is table order.
func SortEvents(events []Event) {
	slices.SortFunc(events, func(a, b Event) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
