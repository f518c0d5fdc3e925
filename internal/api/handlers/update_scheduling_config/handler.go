package update_scheduling_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	"github.com/salonmate/SM-AppointmentService/internal/api/middleware"
	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig"
)

const (
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgMissingUserID      = "отсутствует идентификатор пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidConfigData  = "некорректные параметры конфигурации"
	msgBusinessNotFound   = "бизнес не найден"
	msgBranchNotFound     = "филиал не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service SchedulingConfigService
	logger  Logger
}

func NewHandler(service SchedulingConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/scheduling-config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/scheduling-config - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /businesses/{id}/scheduling-config - Missing user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/scheduling-config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	config, err := h.service.Upsert(r.Context(), req.ToServiceRequest(businessID, userID))
	if err != nil {
		switch {
		case errors.Is(err, schedulingconfig.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/{id}/scheduling-config - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, schedulingconfig.ErrBranchNotFound):
			h.logger.Warn("PUT /businesses/{id}/scheduling-config - Branch not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, schedulingconfig.ErrServiceNotFound):
			h.logger.Warn("PUT /businesses/{id}/scheduling-config - Service not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, schedulingconfig.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/{id}/scheduling-config - Access denied: business_id=%d, user_id=%d",
				businessID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedulingconfig.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/scheduling-config - Invalid config data: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondBadRequest(w, msgInvalidConfigData)

		default:
			h.logger.Error("PUT /businesses/{id}/scheduling-config - Failed to upsert config: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/scheduling-config - Config upserted successfully: business_id=%d, user_id=%d",
		businessID, userID)
	handlers.RespondJSON(w, http.StatusOK, config)
}
