package complete_appointment

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	SetEvidence(ctx context.Context, id int64, kind domain.EvidenceKind, present bool) error
	FinalizeCompletion(ctx context.Context, id int64, totalAmount float64) error
}

// BusinessServiceClient интерфейс клиента для BusinessService
type BusinessServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*businessservice.Business, error)
}

// EvidenceServiceClient интерфейс клиента сервиса фотофиксации
type EvidenceServiceClient interface {
	RegisterUpload(ctx context.Context, appointmentID int64, kind domain.EvidenceKind) (string, error)
}

// BillingServiceClient интерфейс клиента биллинга
type BillingServiceClient interface {
	FinalizeCommission(ctx context.Context, appointment *domain.Appointment) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
