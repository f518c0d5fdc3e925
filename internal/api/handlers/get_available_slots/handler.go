package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	getAvailableSlots "github.com/salonmate/SM-AppointmentService/internal/usecase/get_available_slots"
)

const (
	msgInvalidBusinessID   = "некорректный ID бизнеса"
	msgInvalidBranchID     = "некорректный ID филиала"
	msgInvalidSpecialistID = "некорректный ID специалиста"
	msgMissingSpecialistID = "ID специалиста обязателен"
	msgInvalidServiceIDs   = "некорректный список ID услуг"
	msgMissingServiceIDs   = "список ID услуг обязателен"
	msgMissingDate         = "дата обязательна"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateTooFar          = "дата слишком далеко в будущем"
	msgBusinessNotFound    = "бизнес не найден"
	msgBranchNotFound      = "филиал не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgServiceNotAvailable = "услуга недоступна в выбранном филиале"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/branches/{branchId}/available-slots
// Query params: specialistId (required), serviceIds (required, "1,2,3"), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	branchID, err := strconv.ParseInt(vars["branchId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	specialistIDStr := r.URL.Query().Get("specialistId")
	if specialistIDStr == "" {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Missing specialist ID")
		handlers.RespondBadRequest(w, msgMissingSpecialistID)
		return
	}
	specialistID, err := strconv.ParseInt(specialistIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid specialist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpecialistID)
		return
	}

	serviceIDsStr := r.URL.Query().Get("serviceIds")
	if serviceIDsStr == "" {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Missing service IDs")
		handlers.RespondBadRequest(w, msgMissingServiceIDs)
		return
	}
	serviceIDs, err := ParseServiceIDs(serviceIDsStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid service IDs: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceIDs)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(businessID, branchID, specialistID, serviceIDs, dateStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrBusinessNotFound):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, getAvailableSlots.ErrBranchNotFound):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Branch not found: business_id=%d, branch_id=%d",
				businessID, branchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Service not found: business_id=%d, service_ids=%v",
				businessID, serviceIDs)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotAvailableAtBranch):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Service not available at branch: business_id=%d, branch_id=%d",
				businessID, branchID)
			handlers.RespondBadRequest(w, msgServiceNotAvailable)

		case errors.Is(err, getAvailableSlots.ErrMissingParameters):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Missing parameters: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Invalid date: business_id=%d, date=%s",
				businessID, dateStr)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /businesses/{id}/branches/{id}/available-slots - Date too far in future: business_id=%d, date=%s",
				businessID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		default:
			h.logger.Error("GET /businesses/{id}/branches/{id}/available-slots - Failed to get slots: business_id=%d, branch_id=%d, error=%v",
				businessID, branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /businesses/{id}/branches/{id}/available-slots - Slots retrieved successfully: business_id=%d, branch_id=%d, specialist_id=%d, slots_count=%d",
		businessID, branchID, specialistID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
