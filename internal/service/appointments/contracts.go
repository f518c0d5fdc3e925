package appointments

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	GetWithFilter(ctx context.Context, filter domain.SpecialistAppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
	SetEvidence(ctx context.Context, id int64, kind domain.EvidenceKind, present bool) error
}

// BusinessServiceClient интерфейс клиента для BusinessService
type BusinessServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*businessservice.Business, error)
}

// EvidenceServiceClient интерфейс клиента сервиса фотофиксации
type EvidenceServiceClient interface {
	RegisterUpload(ctx context.Context, appointmentID int64, kind domain.EvidenceKind) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
