package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/lobby"
	"github.com/ballroyale/server/internal/session"
	"github.com/ballroyale/server/internal/ws"
)

// LobbyHandler handles room membership messages.
type LobbyHandler struct {
	dir  *lobby.Directory
	ctrl *session.Controller
}

// NewLobbyHandler creates a new lobby handler.
func NewLobbyHandler(dir *lobby.Directory, ctrl *session.Controller) *LobbyHandler {
	return &LobbyHandler{
		dir:  dir,
		ctrl: ctrl,
	}
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type roomResponse struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	HostID   string `json:"hostId"`
}

// HandleCreateRoom handles room creation.
func (h *LobbyHandler) HandleCreateRoom(client *ws.Client, msg ws.Message) {
	var req createRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Name == "" {
		client.SendMessage(ws.NewErrorMessage("name is required"))
		return
	}

	r := h.dir.CreateRoom()
	if _, err := r.AddMember(client.ID, req.Name, client); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeRoomCreated, roomResponse{
		RoomCode: r.Code,
		PlayerID: client.ID,
		HostID:   r.HostID(),
	})
	client.SendMessage(resp)
	h.broadcastRoomInfo(r)

	slog.Info("player created room", "player", req.Name, "room", r.Code)
}

type joinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

// HandleJoinRoom handles joining an existing room.
func (h *LobbyHandler) HandleJoinRoom(client *ws.Client, msg ws.Message) {
	var req joinRoomRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.RoomCode == "" || req.Name == "" {
		client.SendMessage(ws.NewErrorMessage("roomCode and name are required"))
		return
	}

	r, _, err := h.dir.Join(req.RoomCode, req.Name, client)
	if err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}

	resp, _ := ws.NewMessage(ws.TypeRoomJoined, roomResponse{
		RoomCode: r.Code,
		PlayerID: client.ID,
		HostID:   r.HostID(),
	})
	client.SendMessage(resp)
	h.broadcastRoomInfo(r)

	slog.Info("player joined room", "player", req.Name, "room", r.Code)
}

type startGameRequest struct {
	RoomCode string `json:"roomCode"`
	GameMode string `json:"gameMode"`
}

// HandleStartGame handles the host launching a game. The first state update
// with the countdown doubles as the start acknowledgement.
func (h *LobbyHandler) HandleStartGame(client *ws.Client, msg ws.Message) {
	var req startGameRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.RoomCode == "" {
		client.SendMessage(ws.NewErrorMessage("roomCode is required"))
		return
	}

	if r := h.dir.GetRoom(req.RoomCode); r == nil {
		client.SendMessage(ws.NewErrorMessage("room not found"))
		return
	}

	mode := game.ModeClassic
	if req.GameMode != "" {
		var ok bool
		if mode, ok = game.ParseMode(req.GameMode); !ok {
			client.SendMessage(ws.NewErrorMessage("unknown game mode: " + req.GameMode))
			return
		}
	}

	if err := h.ctrl.Start(req.RoomCode, client.ID, mode); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
		return
	}
}

// HandleLeaveRoom handles a player leaving a room.
func (h *LobbyHandler) HandleLeaveRoom(client *ws.Client, _ ws.Message) {
	h.removePlayer(client)
}

// HandleDisconnect handles client disconnection. The seat is freed; a running
// game keeps its roster, the abandoned ball just stops receiving input.
func (h *LobbyHandler) HandleDisconnect(client *ws.Client) {
	h.removePlayer(client)
}

func (h *LobbyHandler) removePlayer(client *ws.Client) {
	r := h.dir.FindRoomByMember(client.ID)
	if r == nil {
		return
	}

	r.RemoveMember(client.ID)
	if r.IsEmpty() {
		h.ctrl.Destroy(r.Code)
		h.dir.RemoveRoom(r.Code)
	} else {
		h.broadcastRoomInfo(r)
	}

	slog.Info("player left", "player", client.ID, "room", r.Code)
}

type roomInfoResponse struct {
	RoomCode string         `json:"roomCode"`
	HostID   string         `json:"hostId"`
	Players  []lobby.Member `json:"players"`
}

func (h *LobbyHandler) broadcastRoomInfo(r *lobby.Room) {
	resp, _ := ws.NewMessage(ws.TypeRoomInfo, roomInfoResponse{
		RoomCode: r.Code,
		HostID:   r.HostID(),
		Players:  r.Members(),
	})
	r.Broadcast(resp)
}
