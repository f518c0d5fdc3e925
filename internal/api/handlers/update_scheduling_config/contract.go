package update_scheduling_config

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig/models"
)

type SchedulingConfigService interface {
	Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
