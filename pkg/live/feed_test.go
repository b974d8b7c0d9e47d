package live

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflow-ui/reflow/pkg/tree"
)

func startFeed(t *testing.T) (*Feed, string) {
	t.Helper()
	feed := NewFeed()
	r := chi.NewRouter()
	feed.Mount(r, "/live")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(feed.Close)
	return feed, "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitSubscribers(t *testing.T, feed *Feed, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return feed.Subscribers() == n
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	feed, url := startFeed(t)
	conn := dial(t, url)
	waitSubscribers(t, feed, 1)

	target := tree.Handle{Slot: 3, Gen: 1}
	feed.Broadcast([]tree.Patch{{Op: tree.OpReplaceText, Target: target, Text: "7"}})

	var frame Frame
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&frame))

	assert.Equal(t, uint64(1), frame.Seq)
	require.Len(t, frame.Patches, 1)
	assert.Equal(t, "ReplaceText", frame.Patches[0].Op)
	assert.Equal(t, "7", frame.Patches[0].Text)
	assert.Equal(t, WireHandle{Slot: 3, Gen: 1}, frame.Patches[0].Target)
}

func TestFrameSequenceIsMonotonic(t *testing.T) {
	feed, url := startFeed(t)
	conn := dial(t, url)
	waitSubscribers(t, feed, 1)

	p := []tree.Patch{{Op: tree.OpReplaceText, Target: tree.Handle{Slot: 1, Gen: 1}, Text: "x"}}
	feed.Broadcast(nil) // empty flush produces no frame
	feed.Broadcast(p)
	feed.Broadcast(p)

	var first, second Frame
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestBroadcastFansOut(t *testing.T) {
	feed, url := startFeed(t)
	a := dial(t, url)
	b := dial(t, url)
	waitSubscribers(t, feed, 2)

	feed.Broadcast([]tree.Patch{{Op: tree.OpRemove, Target: tree.Handle{Slot: 2, Gen: 1}}})

	for _, conn := range []*websocket.Conn{a, b} {
		var frame Frame
		conn.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "Remove", frame.Patches[0].Op)
	}
}

func TestClosedClientIsDropped(t *testing.T) {
	feed, url := startFeed(t)
	conn := dial(t, url)
	waitSubscribers(t, feed, 1)

	conn.Close()
	waitSubscribers(t, feed, 0)

	// Broadcasting with nobody listening is a no-op, not a failure.
	feed.Broadcast([]tree.Patch{{Op: tree.OpRemove, Target: tree.Handle{Slot: 1, Gen: 1}}})
}

func TestEncodePatchMarksHandlerAttrs(t *testing.T) {
	rec := &tree.Record{
		Kind: tree.KindElement,
		Tag:  "button",
		Attrs: []tree.Attr{
			tree.A("onclick", func() {}),
			tree.A("id", "go"),
		},
	}
	wp := EncodePatch(tree.Patch{
		Op:     tree.OpInsert,
		Target: tree.Handle{Slot: 5, Gen: 1},
		Parent: tree.Handle{Slot: 4, Gen: 1},
		Index:  1,
		Node:   rec,
	})

	assert.Equal(t, "Insert", wp.Op)
	require.NotNil(t, wp.Parent)
	assert.Equal(t, uint32(4), wp.Parent.Slot)
	require.NotNil(t, wp.Node)
	require.Len(t, wp.Node.Attrs, 2)
	assert.True(t, wp.Node.Attrs[0].Handler)
	assert.Nil(t, wp.Node.Attrs[0].Value)
	assert.Equal(t, "go", wp.Node.Attrs[1].Value)
}

func TestEncodePatchSetAttrHandlerValue(t *testing.T) {
	wp := EncodePatch(tree.Patch{
		Op:     tree.OpSetAttr,
		Target: tree.Handle{Slot: 1, Gen: 1},
		Name:   "onclick",
		Value:  func() {},
	})
	assert.True(t, wp.Handler)
	assert.Nil(t, wp.Value)
}
