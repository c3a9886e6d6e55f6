package ui

import (
	"testing"
	"time"

	"commando/model"

	"github.com/stretchr/testify/assert"
)

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortTitle, ParseSortKey("Title"))
	assert.Equal(t, SortRecent, ParseSortKey("recent"))
	assert.Equal(t, SortNumber, ParseSortKey("bogus"))
	assert.Equal(t, SortNumber, SortRecent.Next())
}

func TestSortCommands(t *testing.T) {
	a := model.New(3, "alpha", "a")
	a.Category = "z"
	b := model.New(1, "Beta", "b")
	b.Category = "a"
	c := model.New(2, "alpha", "c")
	c.Category = "a"

	tests := []struct {
		key  SortKey
		asc  bool
		want []int
	}{
		{SortNumber, true, []int{1, 2, 3}},
		{SortNumber, false, []int{3, 2, 1}},
		{SortTitle, true, []int{2, 3, 1}},
		{SortCategory, true, []int{1, 2, 3}},
		{SortCategory, false, []int{3, 2, 1}},
	}
	for _, tt := range tests {
		cmds := []model.Command{a, b, c}
		SortCommands(cmds, tt.key, tt.asc, nil)
		assert.Equal(t, tt.want, numbers(cmds), "%s asc=%v", tt.key, tt.asc)
	}
}

func TestSortRecent(t *testing.T) {
	now := time.Now()
	last := map[int]time.Time{2: now.Add(-time.Hour), 3: now}
	cmds := []model.Command{model.New(1, "a", "a"), model.New(2, "b", "b"), model.New(3, "c", "c")}

	SortCommands(cmds, SortRecent, true, last)
	assert.Equal(t, []int{3, 2, 1}, numbers(cmds))

	SortCommands(cmds, SortRecent, false, last)
	assert.Equal(t, []int{2, 3, 1}, numbers(cmds))
}
