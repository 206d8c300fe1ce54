package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := newHandle(&Config{Name: "b", Path: "/x"}, Callbacks{})
	b := newHandle(&Config{Name: "a", Path: "/y"}, Callbacks{})
	r.Add(a)
	r.Add(b)
	r.Add(nil)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID())
	assert.True(t, ok)
	assert.Same(t, a, got)

	list := r.List()
	assert.Equal(t, []*Handle{b, a}, list)

	found, ok := r.FindByName("b")
	assert.True(t, ok)
	assert.Same(t, a, found)
	_, ok = r.FindByName("zzz")
	assert.False(t, ok)

	removed, ok := r.Remove(a.ID())
	assert.True(t, ok)
	assert.Same(t, a, removed)
	_, ok = r.Get(a.ID())
	assert.False(t, ok)
	_, ok = r.Remove(a.ID())
	assert.False(t, ok)
}
