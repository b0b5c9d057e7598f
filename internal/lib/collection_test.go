package lib

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type testItem struct {
	id    string
	value int
}

func (t *testItem) GetID() string {
	return t.id
}

func TestCollection(t *testing.T) {
	collection := NewCollection[*testItem]()
	require.NotNil(t, collection)

	collection.Store(&testItem{id: "testid"})

	item, ok := collection.Load("testid")
	require.True(t, ok)
	require.NotNil(t, item)

	collection.Delete("testid")

	item, ok = collection.Load("testid")
	require.False(t, ok)
	require.Nil(t, item)
}

func TestCollectionLoadOrStore(t *testing.T) {
	collection := NewCollection[*testItem]()

	actual, loaded := collection.LoadOrStore(&testItem{id: "a", value: 1})
	require.False(t, loaded)
	require.Equal(t, 1, actual.value)

	actual, loaded = collection.LoadOrStore(&testItem{id: "a", value: 2})
	require.True(t, loaded)
	require.Equal(t, 1, actual.value)
}

func TestCollectionRangeStops(t *testing.T) {
	collection := NewCollection[*testItem]()
	for i := 0; i < 10; i++ {
		collection.Store(&testItem{id: fmt.Sprintf("id-%d", i)})
	}
	require.Equal(t, 10, collection.Len())

	visited := 0
	collection.Range(func(item *testItem) bool {
		visited++
		return visited < 3
	})
	require.Equal(t, 3, visited)
}
