package ui

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"commando/model"
)

type SortKey string

const (
	SortNumber   SortKey = "number"
	SortTitle    SortKey = "title"
	SortTag      SortKey = "tag"
	SortCategory SortKey = "category"
	SortRecent   SortKey = "recent"
)

var sortKeys = []SortKey{SortNumber, SortTitle, SortTag, SortCategory, SortRecent}

// ParseSortKey falls back to SortNumber for unknown values.
func ParseSortKey(s string) SortKey {
	for _, k := range sortKeys {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k
		}
	}
	return SortNumber
}

func (k SortKey) Next() SortKey {
	i := slices.Index(sortKeys, k)
	return sortKeys[(i+1)%len(sortKeys)]
}

// SortCommands orders cmds in place. Ties fall back to the card number.
// For SortRecent, ascending means most recently used first; cards never
// run go last either way.
func SortCommands(cmds []model.Command, key SortKey, ascending bool, lastUsed map[int]time.Time) {
	byNumber := func(a, b model.Command) int { return cmp.Compare(a.Number, b.Number) }

	var primary func(a, b model.Command) int
	switch key {
	case SortTitle:
		primary = func(a, b model.Command) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortTag:
		primary = func(a, b model.Command) int {
			return cmp.Compare(strings.ToLower(a.Tag), strings.ToLower(b.Tag))
		}
	case SortCategory:
		primary = func(a, b model.Command) int {
			return cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	case SortRecent:
		slices.SortStableFunc(cmds, func(a, b model.Command) int {
			ta, oka := lastUsed[a.Number]
			tb, okb := lastUsed[b.Number]
			switch {
			case oka && !okb:
				return -1
			case !oka && okb:
				return 1
			case oka && okb && !ta.Equal(tb):
				if ascending {
					return tb.Compare(ta)
				}
				return ta.Compare(tb)
			}
			return byNumber(a, b)
		})
		return
	default:
		primary = byNumber
	}

	slices.SortStableFunc(cmds, func(a, b model.Command) int {
		c := primary(a, b)
		if c == 0 {
			c = byNumber(a, b)
		}
		if !ascending {
			c = -c
		}
		return c
	})
}
