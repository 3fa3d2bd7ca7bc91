package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalQuantity(t *testing.T) {
	cart := &Cart{Items: []CartEntry{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}}
	assert.Equal(t, 5, cart.TotalQuantity())
	assert.Equal(t, 0, (&Cart{}).TotalQuantity())
}

func TestFindEntryIndex(t *testing.T) {
	cart := &Cart{Items: []CartEntry{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	}}
	assert.Equal(t, 0, cart.FindEntryIndex("p1"))
	assert.Equal(t, 1, cart.FindEntryIndex("p2"))
	assert.Equal(t, -1, cart.FindEntryIndex("p3"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, (&Cart{}).IsEmpty())
	assert.False(t, (&Cart{Items: []CartEntry{{ProductID: "p1", Quantity: 1}}}).IsEmpty())
}

func TestSnapshot_ChangesWithVersion(t *testing.T) {
	cart := &Cart{ID: "c1", Version: 3}
	assert.Equal(t, "c1:3", cart.Snapshot())

	cart.Version++
	assert.Equal(t, "c1:4", cart.Snapshot())
}
