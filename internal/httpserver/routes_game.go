// internal/httpserver/routes_game.go
//
// HTTP routes for Grid Chase.
// Exposes four endpoints under /game:
//   - GET  /game             → current state (starts a 7x7 game on first visit)
//   - POST /game/move        → apply one directional input
//   - POST /game/reset       → restart, optionally on a new grid size
//   - GET  /game/leaderboard → fewest-move wins for a grid size
//
// One game per browser session, held in memory. Wins are persisted to the
// results store on the move that reaches the target.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/aswathmantle-create/game/internal/game"
	"github.com/aswathmantle-create/game/internal/metrics"
	"github.com/aswathmantle-create/game/internal/results"
	"github.com/aswathmantle-create/game/internal/store"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/", s.handleGameState)
		r.Post("/move", s.handleMove)
		r.Post("/reset", s.handleReset)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// gameRes is the state payload every /game endpoint returns.
type gameRes struct {
	*game.Game
	State  string   `json:"state"` // active | won
	Status string   `json:"status"`
	Board  []string `json:"board"`
	Sizes  []int    `json:"sizes"`
}

func toRes(g *game.Game) gameRes {
	return gameRes{Game: g, State: g.State(), Status: g.Status(), Board: g.Board(), Sizes: game.Sizes}
}

func newDefaultGame() *game.Game { return game.New(game.DefaultSize) }

// handleGameState returns the session's game, creating one if needed.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ensure(w, r)
	g, err := s.games.Get(r.Context(), sid)
	if errors.Is(err, store.ErrNotFound) {
		g, err = s.games.Update(r.Context(), sid, newDefaultGame, nil)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, toRes(g))
}

// moveReq is the request payload for /game/move.
type moveReq struct {
	Dir string `json:"dir"` // up | down | left | right
}

// handleMove applies one directional input.
// Moves after a win are accepted and ignored; the unchanged state is returned.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	dir, err := game.ParseDirection(req.Dir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sid := s.sessions.ensure(w, r)
	var moved, justWon bool
	g, err := s.games.Update(r.Context(), sid, newDefaultGame, func(g *game.Game) {
		wasWon := g.Won
		moved = g.Move(dir)
		justWon = !wasWon && g.Won
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if moved {
		metrics.MovesTotal.Inc()
	}
	if justWon {
		metrics.WinsTotal.WithLabelValues(strconv.Itoa(g.Size)).Inc()
		log.Info().Str("game", g.ID).Int("size", g.Size).Int("moves", g.Moves).Msg("game won")
		if s.results != nil {
			// Best effort: a failed insert must not fail the move.
			if err := s.results.RecordWin(r.Context(), results.Win{SessionID: sid, GridSize: g.Size, Moves: g.Moves}); err != nil {
				log.Warn().Err(err).Str("game", g.ID).Msg("record win")
			}
		}
	}
	writeJSON(w, http.StatusOK, toRes(g))
}

// resetReq is the request payload for /game/reset.
type resetReq struct {
	Size int `json:"size"` // 0 keeps the current size
}

// handleReset restarts the session's game. Changing the size is a reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Size != 0 && !game.ValidSize(req.Size) {
		writeError(w, http.StatusBadRequest, game.ErrInvalidSize.Error())
		return
	}

	sid := s.sessions.ensure(w, r)
	g, err := s.games.Update(r.Context(), sid, newDefaultGame, func(g *game.Game) {
		size := req.Size
		if size == 0 {
			size = g.Size
		}
		g.Reset(size)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, toRes(g))
}

// lbRes is returned by /game/leaderboard.
type lbRes struct {
	Size int           `json:"size"`
	Top  []results.Win `json:"top"`
}

// handleLeaderboard returns the top wins for ?size= (default 7).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	size := game.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !game.ValidSize(n) {
			writeError(w, http.StatusBadRequest, game.ErrInvalidSize.Error())
			return
		}
		size = n
	}
	top := []results.Win{}
	if s.results != nil {
		rows, err := s.results.Leaderboard(r.Context(), size, 20)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		top = append(top, rows...)
	}
	writeJSON(w, http.StatusOK, lbRes{Size: size, Top: top})
}
