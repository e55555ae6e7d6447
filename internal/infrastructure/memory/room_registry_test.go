package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomIsInjective(t *testing.T) {
	reg := NewRoomRegistry()

	a := reg.Create("general")
	b := reg.Create("general")

	assert.NotEqual(t, a.RoomID, b.RoomID)
	assert.NotEmpty(t, a.RoomID)

	got, ok := reg.Get(a.RoomID)
	require.True(t, ok)
	assert.Equal(t, a, got)

	got, ok = reg.Get(b.RoomID)
	require.True(t, ok)
	assert.Equal(t, b, got)
}

func TestCreateRoomRetriesIDCollision(t *testing.T) {
	reg := NewRoomRegistry()
	ids := []string{"dup", "dup", "fresh"}
	reg.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := reg.Create("a")
	second := reg.Create("b")

	assert.Equal(t, "dup", first.RoomID)
	assert.Equal(t, "fresh", second.RoomID)
}

func TestListKeepsCreationOrder(t *testing.T) {
	reg := NewRoomRegistry()
	assert.Empty(t, reg.List())

	var want []string
	for i := 0; i < 5; i++ {
		want = append(want, reg.Create(fmt.Sprintf("room-%d", i)).RoomName)
	}

	var got []string
	for _, r := range reg.List() {
		got = append(got, r.RoomName)
	}
	assert.Equal(t, want, got)
}

func TestListReturnsSnapshot(t *testing.T) {
	reg := NewRoomRegistry()
	reg.Create("one")

	rooms := reg.List()
	rooms[0].RoomName = "mutated"
	reg.Create("two")

	assert.Len(t, rooms, 1)
	assert.Equal(t, "one", reg.List()[0].RoomName)
}

func TestGetUnknownRoom(t *testing.T) {
	reg := NewRoomRegistry()
	_, ok := reg.Get("missing")
	assert.False(t, ok)
}

func TestConcurrentCreateAndList(t *testing.T) {
	reg := NewRoomRegistry()
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				reg.Create(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				for _, r := range reg.List() {
					assert.NotEmpty(t, r.RoomID)
				}
			}
		}()
	}
	wg.Wait()

	rooms := reg.List()
	assert.Len(t, rooms, writers*perWriter)
	assert.Equal(t, writers*perWriter, reg.Len())

	seen := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		seen[r.RoomID] = struct{}{}
	}
	assert.Len(t, seen, writers*perWriter)
}
