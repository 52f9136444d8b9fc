package audit

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/json"
	"github.com/hilthontt/burnbox/internal/infrastructure/validate"
)

var validateEventType = validate.Field("type", validate.Required(),
	validate.OneOf(string(domain.EventRoomOpened), string(domain.EventRoomClosed)))

const (
	defaultLimit  = 50
	maxLimit      = 200
	defaultWindow = 24 * time.Hour
)

type Handler struct {
	repo domain.RoomAuditRepository
	now  func() time.Time
}

func NewHandler(repo domain.RoomAuditRepository) *Handler {
	return &Handler{
		repo: repo,
		now:  time.Now,
	}
}

// GetRoomLogs godoc
// @Summary      Room audit trail
// @Description  Returns the lifecycle entries recorded for one room, newest first
// @Tags         audit
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        limit query int false "Maximum entries to return (1-200)" default(50)
// @Success      200 {object} auditLogsResponse "Audit entries"
// @Failure      400 {object} json.ErrorResponse "Bad request - invalid room id or limit"
// @Failure      500 {object} json.ErrorResponse "Internal server error"
// @Router       /audit/rooms/{roomId} [get]
func (h *Handler) GetRoomLogs(w http.ResponseWriter, r *http.Request) {
	roomID, err := domain.ParseRoomID(chi.URLParam(r, "roomId"))
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			json.WriteBadRequestError(w, "limit must be between 1 and 200")
			return
		}
	}

	logs, err := h.repo.GetByRoomID(r.Context(), roomID, limit)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, toResponse(logs))
}

// GetEventLogs godoc
// @Summary      Audit entries by event type
// @Description  Returns room_opened or room_closed entries in a time window, newest first
// @Tags         audit
// @Produce      json
// @Param        type query string true "Event type" Enums(room_opened, room_closed)
// @Param        from query string false "Window start, RFC3339 (default: 24h before to)"
// @Param        to query string false "Window end, RFC3339 (default: now)"
// @Success      200 {object} auditLogsResponse "Audit entries"
// @Failure      400 {object} json.ErrorResponse "Bad request - invalid type or window"
// @Failure      500 {object} json.ErrorResponse "Internal server error"
// @Router       /audit/events [get]
func (h *Handler) GetEventLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if err := validateEventType(query.Get("type")); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	eventType := domain.RoomEventType(query.Get("type"))

	to, err := parseTime(query.Get("to"), h.now())
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}
	from, err := parseTime(query.Get("from"), to.Add(-defaultWindow))
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if from.After(to) {
		json.WriteBadRequestError(w, "from must not be after to")
		return
	}

	logs, err := h.repo.GetByEventType(r.Context(), eventType, from, to)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, toResponse(logs))
}

func parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("times must be RFC3339, e.g. 2024-01-01T12:00:00Z")
	}
	return t, nil
}

func toResponse(logs []domain.RoomAuditLog) auditLogsResponse {
	resp := auditLogsResponse{Logs: make([]auditLogResponse, 0, len(logs))}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, auditLogResponse{
			ID:        l.ID,
			RoomID:    l.RoomID,
			EventType: string(l.EventType),
			Timestamp: l.Timestamp,
			Metadata:  l.Metadata,
		})
	}
	return resp
}
