package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing(t *testing.T) {
	r := newRing[int](3)
	assert.Empty(t, r.last(5))

	r.push(1)
	r.push(2)
	assert.Equal(t, []int{1, 2}, r.last(0))

	r.push(3)
	r.push(4)
	r.push(5)
	assert.Equal(t, 3, r.len())
	assert.Equal(t, []int{3, 4, 5}, r.last(10))
	assert.Equal(t, []int{4, 5}, r.last(2))
}
