package handler

import (
	"encoding/json"
	"math"

	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/session"
	"github.com/ballroyale/server/internal/ws"
)

// GameplayHandler handles in-game messages.
type GameplayHandler struct {
	ctrl *session.Controller
}

// NewGameplayHandler creates a new gameplay handler.
func NewGameplayHandler(ctrl *session.Controller) *GameplayHandler {
	return &GameplayHandler{ctrl: ctrl}
}

type moveRequest struct {
	RoomCode string `json:"roomCode"`
	Movement struct {
		X      float64 `json:"x"`
		Z      float64 `json:"z"`
		Sprint bool    `json:"sprint"`
	} `json:"movement"`
}

// HandleMove overwrites the sender's input slot. Direction magnitude is taken
// as sent; only non-finite components are zeroed before they can reach the
// simulation.
func (h *GameplayHandler) HandleMove(client *ws.Client, msg ws.Message) {
	var req moveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		client.SendMessage(ws.NewErrorMessage("invalid move data"))
		return
	}

	h.ctrl.ApplyInput(req.RoomCode, client.ID, game.Input{
		X:      finiteOrZero(req.Movement.X),
		Z:      finiteOrZero(req.Movement.Z),
		Sprint: req.Movement.Sprint,
	})
}

type roomCodeRequest struct {
	RoomCode string `json:"roomCode"`
}

// HandleRestart handles the host resetting the room's game.
func (h *GameplayHandler) HandleRestart(client *ws.Client, msg ws.Message) {
	var req roomCodeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.RoomCode == "" {
		client.SendMessage(ws.NewErrorMessage("roomCode is required"))
		return
	}

	if err := h.ctrl.Restart(req.RoomCode, client.ID); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
	}
}

// HandleManualEnd handles the host cutting the game short.
func (h *GameplayHandler) HandleManualEnd(client *ws.Client, msg ws.Message) {
	var req roomCodeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.RoomCode == "" {
		client.SendMessage(ws.NewErrorMessage("roomCode is required"))
		return
	}

	if err := h.ctrl.ManualEnd(req.RoomCode, client.ID); err != nil {
		client.SendMessage(ws.NewErrorMessage(err.Error()))
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
