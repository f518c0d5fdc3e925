package start_appointment

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	SetConsentSigned(ctx context.Context, id int64, signed bool) error
	SetEvidence(ctx context.Context, id int64, kind domain.EvidenceKind, present bool) error
}

// BusinessServiceClient интерфейс клиента для BusinessService
type BusinessServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*businessservice.Business, error)
}

// ConsentServiceClient интерфейс клиента сервиса информированных согласий
type ConsentServiceClient interface {
	HasSignedConsent(ctx context.Context, appointmentID int64) (bool, error)
	SubmitSignature(ctx context.Context, appointmentID int64, signature []byte) error
}

// EvidenceServiceClient интерфейс клиента сервиса фотофиксации
type EvidenceServiceClient interface {
	RegisterUpload(ctx context.Context, appointmentID int64, kind domain.EvidenceKind) (string, error)
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
