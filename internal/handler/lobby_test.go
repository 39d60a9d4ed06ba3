package handler

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballroyale/server/internal/events"
	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/lobby"
	"github.com/ballroyale/server/internal/session"
	"github.com/ballroyale/server/internal/ws"
)

type testRig struct {
	router *Router
	dir    *lobby.Directory
	ctrl   *session.Controller
	clock  *clockwork.FakeClock
}

func setupRig() *testRig {
	dir := lobby.NewDirectory()
	clock := clockwork.NewFakeClock()
	ctrl := session.NewController(clock, dir, events.Nop{}, nil)
	return &testRig{
		router: NewRouter(dir, ctrl),
		dir:    dir,
		ctrl:   ctrl,
		clock:  clock,
	}
}

// mockClient creates a ws.Client with a buffered Send channel for testing.
func mockClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

// drainMessages reads all pending messages from a client's send channel.
func drainMessages(client *ws.Client) []ws.Message {
	var msgs []ws.Message
	for {
		select {
		case data := <-client.Send:
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

// findMessageByType finds the first message of a given type.
func findMessageByType(msgs []ws.Message, msgType string) *ws.Message {
	for _, m := range msgs {
		if m.Type == msgType {
			return &m
		}
	}
	return nil
}

// send routes a raw client message through the router, as the read pump would.
func send(t *testing.T, router *Router, client *ws.Client, msgType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(ws.Message{Type: msgType, Data: data})
	require.NoError(t, err)
	router.HandleMessage(&ws.ClientMessage{Client: client, Data: raw})
}

func requireErrorMessage(t *testing.T, client *ws.Client, want string) {
	t.Helper()
	errMsg := findMessageByType(drainMessages(client), ws.TypeError)
	require.NotNil(t, errMsg, "expected an error message")
	var payload ws.ErrorMessage
	require.NoError(t, json.Unmarshal(errMsg.Data, &payload))
	assert.Equal(t, want, payload.Message)
}

// createRoom drives the create-room flow and returns the new room's code.
func createRoom(t *testing.T, rig *testRig, client *ws.Client, name string) string {
	t.Helper()
	send(t, rig.router, client, ws.TypeCreateRoom, map[string]string{"name": name})

	created := findMessageByType(drainMessages(client), ws.TypeRoomCreated)
	require.NotNil(t, created, "expected room-created")
	var resp roomResponse
	require.NoError(t, json.Unmarshal(created.Data, &resp))
	return resp.RoomCode
}

func joinRoom(t *testing.T, rig *testRig, client *ws.Client, code, name string) {
	t.Helper()
	send(t, rig.router, client, ws.TypeJoinRoom, map[string]string{"roomCode": code, "name": name})
	joined := findMessageByType(drainMessages(client), ws.TypeRoomJoined)
	require.NotNil(t, joined, "expected room-joined")
}

func TestHandleCreateRoom(t *testing.T) {
	rig := setupRig()
	c1 := mockClient("p1")

	send(t, rig.router, c1, ws.TypeCreateRoom, map[string]string{"name": "Alice"})

	msgs := drainMessages(c1)
	created := findMessageByType(msgs, ws.TypeRoomCreated)
	require.NotNil(t, created)
	var resp roomResponse
	require.NoError(t, json.Unmarshal(created.Data, &resp))
	assert.Len(t, resp.RoomCode, 4)
	assert.Equal(t, "p1", resp.PlayerID)
	assert.Equal(t, "p1", resp.HostID, "creator hosts the room")

	info := findMessageByType(msgs, ws.TypeRoomInfo)
	require.NotNil(t, info)
	var infoResp roomInfoResponse
	require.NoError(t, json.Unmarshal(info.Data, &infoResp))
	require.Len(t, infoResp.Players, 1)
	assert.Equal(t, "Alice", infoResp.Players[0].Name)

	require.NotNil(t, rig.dir.GetRoom(resp.RoomCode))
}

func TestHandleCreateRoom_NameRequired(t *testing.T) {
	rig := setupRig()
	c1 := mockClient("p1")

	send(t, rig.router, c1, ws.TypeCreateRoom, map[string]string{})
	requireErrorMessage(t, c1, "name is required")
	assert.Equal(t, 0, rig.dir.RoomCount())
}

func TestHandleJoinRoom(t *testing.T) {
	rig := setupRig()
	c1 := mockClient("p1")
	c2 := mockClient("p2")
	code := createRoom(t, rig, c1, "Alice")

	send(t, rig.router, c2, ws.TypeJoinRoom, map[string]string{"roomCode": code, "name": "Bob"})

	msgs := drainMessages(c2)
	joined := findMessageByType(msgs, ws.TypeRoomJoined)
	require.NotNil(t, joined)
	var resp roomResponse
	require.NoError(t, json.Unmarshal(joined.Data, &resp))
	assert.Equal(t, code, resp.RoomCode)
	assert.Equal(t, "p2", resp.PlayerID)
	assert.Equal(t, "p1", resp.HostID, "joining does not change the host")

	// Everyone already seated hears about the new roster.
	info := findMessageByType(drainMessages(c1), ws.TypeRoomInfo)
	require.NotNil(t, info)
	var infoResp roomInfoResponse
	require.NoError(t, json.Unmarshal(info.Data, &infoResp))
	assert.Len(t, infoResp.Players, 2)
	assert.Equal(t, "p1", infoResp.HostID)
}

func TestHandleJoinRoom_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		wantErr string
	}{
		{"unknown code", map[string]string{"roomCode": "NOPE", "name": "Bob"}, "room not found"},
		{"missing name", map[string]string{"roomCode": "ABCD"}, "roomCode and name are required"},
		{"missing code", map[string]string{"name": "Bob"}, "roomCode and name are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := setupRig()
			c := mockClient("p1")
			send(t, rig.router, c, ws.TypeJoinRoom, tt.payload)
			requireErrorMessage(t, c, tt.wantErr)
		})
	}
}

func TestHandleJoinRoom_Full(t *testing.T) {
	rig := setupRig()
	host := mockClient("p0")
	code := createRoom(t, rig, host, "Host")

	for i := 1; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		joinRoom(t, rig, mockClient(id), code, id)
	}

	late := mockClient("p9")
	send(t, rig.router, late, ws.TypeJoinRoom, map[string]string{"roomCode": code, "name": "Late"})
	requireErrorMessage(t, late, "room is full")
}

func TestHandleJoinRoom_GameInProgress(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	code := createRoom(t, rig, host, "Alice")
	joinRoom(t, rig, mockClient("p2"), code, "Bob")

	send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code})

	late := mockClient("p3")
	send(t, rig.router, late, ws.TypeJoinRoom, map[string]string{"roomCode": code, "name": "Late"})
	requireErrorMessage(t, late, "game in progress")
}

func TestHandleStartGame(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	c2 := mockClient("p2")
	code := createRoom(t, rig, host, "Alice")
	joinRoom(t, rig, c2, code, "Bob")
	drainMessages(host)

	send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code})

	assert.Nil(t, findMessageByType(drainMessages(host), ws.TypeError))
	assert.Equal(t, 1, rig.ctrl.SessionCount())

	snap, ok := rig.ctrl.Snapshot(code)
	require.True(t, ok)
	assert.Equal(t, game.StatusCountdown, snap.Status)
	assert.Equal(t, game.ModeClassic, snap.Mode, "mode defaults to classic")

	// The loop's first countdown broadcast reaches every seat.
	require.Eventually(t, func() bool {
		return findMessageByType(drainMessages(c2), ws.TypeStateUpdate) != nil
	}, 5*time.Second, time.Millisecond)
}

func TestHandleStartGame_Validation(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	code := createRoom(t, rig, host, "Alice")
	joinRoom(t, rig, mockClient("p2"), code, "Bob")
	drainMessages(host)

	t.Run("missing room code", func(t *testing.T) {
		send(t, rig.router, host, ws.TypeStartGame, map[string]string{})
		requireErrorMessage(t, host, "roomCode is required")
	})

	t.Run("room not found", func(t *testing.T) {
		send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": "NOPE"})
		requireErrorMessage(t, host, "room not found")
	})

	t.Run("unknown mode", func(t *testing.T) {
		send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code, "gameMode": "ranked"})
		requireErrorMessage(t, host, "unknown game mode: ranked")
	})

	t.Run("shrinking not available", func(t *testing.T) {
		send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code, "gameMode": "shrinking"})
		requireErrorMessage(t, host, "game mode not available")
	})

	t.Run("host only", func(t *testing.T) {
		guest := mockClient("p3")
		joinRoom(t, rig, guest, code, "Cara")
		send(t, rig.router, guest, ws.TypeStartGame, map[string]string{"roomCode": code})
		requireErrorMessage(t, guest, "only the host can do that")
	})
}

func TestHandleStartGame_NotEnoughPlayers(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	code := createRoom(t, rig, host, "Alice")

	send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code})
	requireErrorMessage(t, host, "not enough players")
}

func TestHandleLeaveRoom_HostSuccession(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	c2 := mockClient("p2")
	code := createRoom(t, rig, host, "Alice")
	joinRoom(t, rig, c2, code, "Bob")
	drainMessages(c2)

	send(t, rig.router, host, ws.TypeLeaveRoom, map[string]string{})

	info := findMessageByType(drainMessages(c2), ws.TypeRoomInfo)
	require.NotNil(t, info)
	var infoResp roomInfoResponse
	require.NoError(t, json.Unmarshal(info.Data, &infoResp))
	assert.Equal(t, "p2", infoResp.HostID, "next joiner inherits the room")
	assert.Len(t, infoResp.Players, 1)
}

func TestHandleLeaveRoom_LastOutClosesRoom(t *testing.T) {
	rig := setupRig()
	host := mockClient("p1")
	c2 := mockClient("p2")
	code := createRoom(t, rig, host, "Alice")
	joinRoom(t, rig, c2, code, "Bob")

	send(t, rig.router, host, ws.TypeStartGame, map[string]string{"roomCode": code})
	require.Equal(t, 1, rig.ctrl.SessionCount())

	send(t, rig.router, host, ws.TypeLeaveRoom, map[string]string{})
	rig.router.HandleDisconnect(c2)

	assert.Nil(t, rig.dir.GetRoom(code))
	assert.Equal(t, 0, rig.ctrl.SessionCount(), "empty room tears its game down")
}

func TestHandleDisconnect_UnknownClient(t *testing.T) {
	rig := setupRig()
	rig.router.HandleDisconnect(mockClient("stranger"))
}

func TestRouter_MalformedEnvelope(t *testing.T) {
	rig := setupRig()
	c := mockClient("p1")

	rig.router.HandleMessage(&ws.ClientMessage{Client: c, Data: []byte("{not json")})
	requireErrorMessage(t, c, "invalid message format")
}

func TestRouter_UnknownType(t *testing.T) {
	rig := setupRig()
	c := mockClient("p1")

	send(t, rig.router, c, "teleport", map[string]string{})
	requireErrorMessage(t, c, "unknown message type: teleport")
}
