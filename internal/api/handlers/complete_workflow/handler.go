package complete_workflow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	"github.com/salonmate/SM-AppointmentService/internal/api/middleware"
	completeAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/complete_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgMissingUserID        = "отсутствует идентификатор пользователя"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgUnknownAction        = "неизвестное действие процедуры завершения"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "доступ запрещен"
	msgIllegalState         = "статус записи не допускает это действие"
	msgInvalidInput         = "некорректные данные запроса"
)

type Handler struct {
	useCase CompleteAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CompleteAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/complete-workflow
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/complete-workflow - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/{id}/complete-workflow - Missing user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CompleteWorkflowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/complete-workflow - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(appointmentID, userID))
	if err != nil {
		switch {
		case errors.Is(err, completeAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/complete-workflow - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, completeAppointment.ErrAccessDenied):
			h.logger.Warn("POST /appointments/{id}/complete-workflow - Access denied: appointment_id=%d, user_id=%d",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, completeAppointment.ErrIllegalState):
			h.logger.Warn("POST /appointments/{id}/complete-workflow - Illegal state: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondError(w, http.StatusConflict, msgIllegalState)

		case errors.Is(err, completeAppointment.ErrUnknownAction):
			h.logger.Warn("POST /appointments/{id}/complete-workflow - Unknown action: appointment_id=%d, action=%s",
				appointmentID, req.Action)
			handlers.RespondBadRequest(w, msgUnknownAction)

		case errors.Is(err, completeAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/complete-workflow - Invalid input: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments/{id}/complete-workflow - Failed: appointment_id=%d, action=%s, error=%v",
				appointmentID, req.Action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/complete-workflow - Action executed: appointment_id=%d, action=%s, status=%s",
		appointmentID, req.Action, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
