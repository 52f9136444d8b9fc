package stats

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hilthontt/burnbox/internal/infrastructure/json"
	"github.com/hilthontt/burnbox/internal/infrastructure/ws"
	"github.com/hilthontt/burnbox/internal/session"
)

const statsTimeout = 2 * time.Second

type Source interface {
	Stats(ctx context.Context) (session.Stats, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// GetStats godoc
// @Summary      Session statistics
// @Description  Returns queue lengths and room counts. Contains no identifiers or message content.
// @Tags         stats
// @Produce      json
// @Success      200 {object} statsResponse "Current statistics"
// @Failure      503 {object} json.ErrorResponse "Session core is not running"
// @Failure      500 {object} json.ErrorResponse "Internal server error"
// @Router       /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statsTimeout)
	defer cancel()

	stats, err := h.source.Stats(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ws.ErrCoreStopped):
			json.WriteUnavailableError(w, "The session service is shutting down")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, statsResponse{
		Connections:       stats.Connections,
		WaitingConfessors: stats.WaitingConfessors,
		WaitingListeners:  stats.WaitingListeners,
		PendingRendezvous: stats.PendingRendezvous,
		ActiveRooms:       stats.ActiveRooms,
	})
}
