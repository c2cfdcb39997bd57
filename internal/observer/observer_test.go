package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSetNotifiesOnChange(t *testing.T) {
	v := NewValue(1)
	var got []int
	cancel := v.Observe(func(n int) { got = append(got, n) })

	assert.False(t, v.Set(1))
	assert.True(t, v.Set(2))
	assert.True(t, v.Set(3))
	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 3, v.Get())

	cancel()
	v.Set(4)
	assert.Equal(t, []int{2, 3}, got)
}

func TestValueObserverCanReadValue(t *testing.T) {
	v := NewValue("a")
	var seen string
	v.Observe(func(string) { seen = v.Get() })
	v.Set("b")
	assert.Equal(t, "b", seen)
}

func TestValueChanDropsWhenFull(t *testing.T) {
	v := NewValue(0)
	ch, cancel := v.Chan(1)
	defer cancel()

	v.Set(1)
	v.Set(2)
	require.Len(t, ch, 1)
	assert.Equal(t, 1, <-ch)
}

func TestListCopies(t *testing.T) {
	l := NewList(func(a, b int) bool { return a == b })
	var got [][]int
	l.Observe(func(v []int) { got = append(got, v) })

	src := []int{1, 2}
	assert.True(t, l.Set(src))
	src[0] = 99
	assert.Equal(t, []int{1, 2}, l.Get())

	assert.False(t, l.Set([]int{1, 2}))
	assert.True(t, l.Set(nil))
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, got[0])
	assert.Empty(t, got[1])
}
