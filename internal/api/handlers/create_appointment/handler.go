package create_appointment

import (
	"errors"
	"net/http"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	"github.com/salonmate/SM-AppointmentService/internal/api/middleware"
	createAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgMissingUserID       = "отсутствует идентификатор пользователя"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateOrTime   = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidInput        = "некорректные данные записи"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgBusinessNotFound    = "бизнес не найден"
	msgBranchNotFound      = "филиал не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgBranchClosed        = "филиал закрыт в выбранную дату"
	msgOutsideWorkingHours = "запись не помещается в рабочие часы филиала"
	msgInvalidDate         = "некорректная дата записи"
	msgDateTooFar          = "дата записи слишком далеко в будущем"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
	msgServiceNotAvailable = "услуга недоступна в выбранном филиале"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /appointments - Slot not available: user_id=%d, business_id=%d", userID, req.BusinessID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrBusinessNotFound):
			h.logger.Warn("POST /appointments - Business not found: business_id=%d", req.BusinessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, createAppointment.ErrBranchNotFound):
			h.logger.Warn("POST /appointments - Branch not found: business_id=%d, branch_id=%d", req.BusinessID, req.BranchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: business_id=%d, service_ids=%v", req.BusinessID, req.ServiceIDs)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotAvailableAtBranch):
			h.logger.Warn("POST /appointments - Service not available at branch: business_id=%d, branch_id=%d", req.BusinessID, req.BranchID)
			handlers.RespondBadRequest(w, msgServiceNotAvailable)

		case errors.Is(err, createAppointment.ErrBranchClosed):
			h.logger.Warn("POST /appointments - Branch closed: business_id=%d, branch_id=%d, date=%s", req.BusinessID, req.BranchID, req.Date)
			handlers.RespondBadRequest(w, msgBranchClosed)

		case errors.Is(err, createAppointment.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: business_id=%d, branch_id=%d, time=%s", req.BusinessID, req.BranchID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createAppointment.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid appointment date: business_id=%d, date=%s", req.BusinessID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createAppointment.ErrDateTooFarInFuture):
			h.logger.Warn("POST /appointments - Date too far in future: business_id=%d, date=%s", req.BusinessID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createAppointment.ErrTooLateToBook):
			h.logger.Warn("POST /appointments - Too late to book: business_id=%d, date=%s, time=%s", req.BusinessID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: user_id=%d, business_id=%d, error=%v",
				userID, req.BusinessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, user_id=%d, business_id=%d",
		result.ID, userID, req.BusinessID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
