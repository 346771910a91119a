package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/verte-zerg/levelscore/internal/game"
	"github.com/verte-zerg/levelscore/internal/model"
)

const downloadName = "game_data.json"

type submitResponse struct {
	Message          string            `json:"message"`
	GameState        model.GameState   `json:"game_state"`
	CurrentLevelName string            `json:"current_level_name"`
	LevelConfig      model.LevelConfig `json:"level_config"`
}

type stateResponse struct {
	GameState        model.GameState   `json:"game_state"`
	CurrentLevelName string            `json:"current_level_name"`
	LevelConfig      model.LevelConfig `json:"level_config"`
}

func (h *handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	state := h.game.State()
	id, cfg := h.game.CurrentLevel()
	h.renderPage(w, "index.html", indexPage{Level: id, Config: cfg, GameOver: state.GameOver})
}

func (h *handler) handleThankYou(w http.ResponseWriter, _ *http.Request) {
	h.renderPage(w, "thankyou.html", nil)
}

func (h *handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	res, err := h.game.SubmitRound(r.Context(), body)
	if err != nil {
		if errors.Is(err, game.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("submit round id=%s: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	msg := "Game state updated."
	if res.RawLogPath != "" {
		msg = fmt.Sprintf("Data successfully dumped to %s and game state updated.", filepath.Base(res.RawLogPath))
	}
	h.hub.Broadcast(Message{Type: "state", Seq: res.Version, Data: res.State})
	writeJSON(w, http.StatusOK, submitResponse{
		Message:          msg,
		GameState:        res.State,
		CurrentLevelName: res.LevelName,
		LevelConfig:      res.LevelConfig,
	})
}

func (h *handler) handleState(w http.ResponseWriter, _ *http.Request) {
	state := h.game.State()
	id, cfg := h.game.CurrentLevel()
	writeJSON(w, http.StatusOK, stateResponse{GameState: state, CurrentLevelName: id, LevelConfig: cfg})
}

func (h *handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, err := h.game.ExportSnapshot(r.Context())
	if err != nil {
		h.logger.Printf("export snapshot id=%s: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	_, _ = w.Write(data)
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	state, version := h.game.VersionedState()
	h.hub.ServeWS(w, r, &Message{Type: "state", Seq: version, Data: state})
}
