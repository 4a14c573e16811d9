package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/settings"
)

func startHub(t *testing.T) string {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func dialStore(t *testing.T, addr, table, client string) *Store {
	t.Helper()
	conn, err := Dial(addr, table, client)
	require.NoError(t, err)
	s := NewStore(settings.NewMemory(), conn)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 10*time.Millisecond, msg)
}

func TestWorldScopeWritesReachOtherClients(t *testing.T) {
	addr := startHub(t)
	host := dialStore(t, addr, "t1", "host")
	guest := dialStore(t, addr, "t1", "guest")

	require.NoError(t, host.Set(settings.KeyCinematicActive, true))

	eventually(t, func() bool {
		v, ok := guest.Get(settings.KeyCinematicActive)
		return ok && v == true
	}, "guest should receive the world-scope write")

	// Host's own local cache holds the value too.
	v, ok := host.Get(settings.KeyCinematicActive)
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestCameraStateDecodesTyped(t *testing.T) {
	addr := startHub(t)
	host := dialStore(t, addr, "t1", "host")
	guest := dialStore(t, addr, "t1", "guest")

	sent := camera.State{OriginID: "t1", X: 12, Y: 34, Scale: 1.5, Rotation: 0.2, Reason: "follow"}
	require.NoError(t, host.Set(settings.KeyHostCameraState, sent))

	eventually(t, func() bool {
		v, ok := guest.Get(settings.KeyHostCameraState)
		if !ok {
			return false
		}
		st, ok := v.(camera.State)
		return ok && st.Equal(sent)
	}, "guest should receive a typed camera state")
}

func TestUserScopeStaysLocal(t *testing.T) {
	addr := startHub(t)
	host := dialStore(t, addr, "t1", "host")
	guest := dialStore(t, addr, "t1", "guest")

	require.NoError(t, host.Set(settings.KeyRetainZoom, true))
	// A world write afterwards acts as a barrier: once it arrives, the user
	// write would have arrived too had it been published.
	require.NoError(t, host.Set(settings.KeyForceFollow, true))

	eventually(t, func() bool {
		_, ok := guest.Get(settings.KeyForceFollow)
		return ok
	}, "world write should arrive")

	_, ok := guest.Get(settings.KeyRetainZoom)
	assert.False(t, ok, "user-scope keys never cross the wire")
}

func TestTablesAreIsolated(t *testing.T) {
	addr := startHub(t)
	host := dialStore(t, addr, "t1", "host")
	other := dialStore(t, addr, "t2", "bystander")
	sibling := dialStore(t, addr, "t1", "sibling")

	require.NoError(t, host.Set(settings.KeyCinematicActive, true))

	eventually(t, func() bool {
		_, ok := sibling.Get(settings.KeyCinematicActive)
		return ok
	}, "same-table client receives the write")

	_, ok := other.Get(settings.KeyCinematicActive)
	assert.False(t, ok, "other tables hear nothing")
}

func TestLateJoinerGetsReplay(t *testing.T) {
	addr := startHub(t)
	host := dialStore(t, addr, "t1", "host")

	require.NoError(t, host.Set(settings.KeyHostSelectionIDs, []string{"a", "b"}))
	// Give the hub a beat to cache before the joiner arrives.
	time.Sleep(50 * time.Millisecond)

	late := dialStore(t, addr, "t1", "late")
	eventually(t, func() bool {
		ids := settings.Strings(late, settings.KeyHostSelectionIDs)
		return len(ids) == 2 && ids[0] == "a" && ids[1] == "b"
	}, "late joiner should be caught up from the cache")
}

func TestOfflineStoreWorksWithoutConn(t *testing.T) {
	s := NewStore(settings.NewMemory(), nil)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(settings.KeyCinematicActive, true))
	v, ok := s.Get(settings.KeyCinematicActive)
	require.True(t, ok)
	assert.Equal(t, true, v)
}
