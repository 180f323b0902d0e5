package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddGetCount(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	assert.Equal(t, 0, r.Count())

	conn := newMockConnection("c1", "u1", RoleUser)
	r.Add(conn)

	assert.Equal(t, 1, r.Count())

	got, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RemoveClosesTransport(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	conn := newMockConnection("c1", "", RoleUser)
	r.Add(conn)

	assert.True(t, r.Remove("c1"))
	assert.True(t, conn.IsClosed(), "remove must close the transport")
	assert.Equal(t, 0, r.Count())
}

// trackingConnection observes the registry state at the moment its
// transport closes. The onClose callback runs on the goroutine holding the
// registry lock, so reading the map directly is safe here.
type trackingConnection struct {
	*mockConnection
	onClose func()
}

func (c *trackingConnection) Close() error {
	if c.onClose != nil {
		c.onClose()
	}
	return c.mockConnection.Close()
}

func TestRegistry_RemoveClosesBeforeDiscard(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	conn := &trackingConnection{mockConnection: newMockConnection("c1", "", RoleUser)}
	stillPresent := false
	conn.onClose = func() {
		_, stillPresent = r.conns["c1"]
	}

	r.Add(conn)
	require.True(t, r.Remove("c1"))

	assert.True(t, stillPresent, "entry must still exist while the transport closes")
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	conn := newMockConnection("c1", "", RoleUser)
	r.Add(conn)

	assert.True(t, r.Remove("c1"))
	assert.False(t, r.Remove("c1"), "second remove is a no-op")
	assert.False(t, r.Remove("never-existed"))
}

func TestRegistry_ForEachVisitsAll(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	r.Add(newMockConnection("c1", "", RoleUser))
	r.Add(newMockConnection("c2", "", RoleAdmin))

	seen := map[string]bool{}
	r.ForEach(func(c Connection) {
		seen[c.ID()] = true
	})

	assert.Len(t, seen, 2)
	assert.True(t, seen["c1"])
	assert.True(t, seen["c2"])
}

// Visitors remove connections mid-iteration during dispatch; the snapshot
// semantics must allow it.
func TestRegistry_ForEachAllowsRemoval(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	r.Add(newMockConnection("c1", "", RoleUser))
	r.Add(newMockConnection("c2", "", RoleUser))

	r.ForEach(func(c Connection) {
		r.Remove(c.ID())
	})

	assert.Equal(t, 0, r.Count())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry(&nopLogger{})

	c1 := newMockConnection("c1", "", RoleUser)
	c2 := newMockConnection("c2", "", RoleUser)
	r.Add(c1)
	r.Add(c2)

	r.Clear()

	assert.Equal(t, 0, r.Count())
	assert.True(t, c1.IsClosed())
	assert.True(t, c2.IsClosed())
}
