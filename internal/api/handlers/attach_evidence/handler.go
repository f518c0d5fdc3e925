package attach_evidence

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	"github.com/salonmate/SM-AppointmentService/internal/api/middleware"
	"github.com/salonmate/SM-AppointmentService/internal/service/appointments"
	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgMissingUserID        = "отсутствует идентификатор пользователя"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidKind          = "некорректный вид фотофиксации, ожидается before или after"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "доступ запрещен"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// AttachEvidenceRequest HTTP request model
type AttachEvidenceRequest struct {
	Kind string `json:"kind"` // "before" | "after"
}

// Handle POST /api/v1/appointments/{appointmentId}/evidence
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/evidence - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/{id}/evidence - Missing user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AttachEvidenceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/evidence - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AttachEvidence(r.Context(), appointmentID, &models.AttachEvidenceRequest{
		UserID: userID,
		Kind:   req.Kind,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/evidence - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("POST /appointments/{id}/evidence - Access denied: appointment_id=%d, user_id=%d",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/evidence - Invalid input: appointment_id=%d, kind=%s, error=%v",
				appointmentID, req.Kind, err)
			handlers.RespondBadRequest(w, msgInvalidKind)

		default:
			h.logger.Error("POST /appointments/{id}/evidence - Failed: appointment_id=%d, kind=%s, error=%v",
				appointmentID, req.Kind, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/evidence - Evidence registered: appointment_id=%d, kind=%s",
		appointmentID, req.Kind)
	handlers.RespondJSON(w, http.StatusOK, result)
}
