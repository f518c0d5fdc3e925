package schedulingconfig

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	Create(ctx context.Context, config *domain.SchedulingConfig) (*domain.SchedulingConfig, error)
	GetByBusinessBranchAndService(ctx context.Context, businessID int64, branchID *int64, serviceID *int64) (*domain.SchedulingConfig, error)
	GetConfigWithHierarchy(ctx context.Context, businessID int64, branchID *int64, serviceID *int64) (*domain.SchedulingConfig, error)
	GetAllByBusiness(ctx context.Context, businessID int64) ([]*domain.SchedulingConfig, error)
	Update(ctx context.Context, config *domain.SchedulingConfig) error
}

// BusinessServiceClient интерфейс клиента для BusinessService
type BusinessServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*businessservice.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*businessservice.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
