package get_scheduling_config

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig/models"
)

type SchedulingConfigService interface {
	GetWithHierarchy(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error)
	GetAllByBusiness(ctx context.Context, businessID int64, userID int64) (*models.ConfigListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
