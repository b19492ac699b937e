package realtime

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Several goroutines broadcasting to the same connection must not
// interleave frame bytes; every frame has to come out parseable.
func TestConn_ConcurrentWritesStayFramed(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	src := &Conn{conn: serverEnd}
	dst := &Conn{conn: clientEnd}
	defer clientEnd.Close()
	defer serverEnd.Close()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = src.WriteJSON(Event{Event: EventTaskUpdated, Data: n})
		}(i)
	}

	for i := 0; i < writers; i++ {
		var ev Event
		require.NoError(t, dst.ReadJSON(&ev))
		assert.Equal(t, EventTaskUpdated, ev.Event)
	}
	wg.Wait()
}
