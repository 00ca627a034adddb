package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSortsBySubmission(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewAddressUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a := NewAddress()
		assert.NotEmpty(t, a)
		assert.False(t, seen[a])
		seen[a] = true
	}
}
