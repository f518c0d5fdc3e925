package get_scheduling_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonmate/SM-AppointmentService/internal/api/handlers"
	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig"
	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig/models"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgInvalidBranchID   = "некорректный ID филиала"
	msgInvalidServiceID  = "некорректный ID услуги"
	msgConfigNotFound    = "конфигурация не найдена"
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

// Handle GET /api/v1/businesses/{businessId}/scheduling-config
// Query params: branchId, serviceId (оба опциональны, иерархический поиск)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/scheduling-config - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	req := &models.GetConfigRequest{BusinessID: businessID}

	if branchIDStr := r.URL.Query().Get("branchId"); branchIDStr != "" {
		branchID, err := strconv.ParseInt(branchIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/scheduling-config - Invalid branch ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBranchID)
			return
		}
		req.BranchID = &branchID
	}

	if serviceIDStr := r.URL.Query().Get("serviceId"); serviceIDStr != "" {
		serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /businesses/{id}/scheduling-config - Invalid service ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
		req.ServiceID = &serviceID
	}

	result, err := h.service.GetWithHierarchy(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, schedulingconfig.ErrConfigNotFound):
			h.logger.Warn("GET /businesses/{id}/scheduling-config - Config not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgConfigNotFound)

		default:
			h.logger.Error("GET /businesses/{id}/scheduling-config - Failed to get config: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/scheduling-config - Config retrieved successfully: business_id=%d, config_id=%d",
		businessID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
