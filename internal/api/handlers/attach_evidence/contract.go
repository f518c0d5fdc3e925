package attach_evidence

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
)

type AppointmentService interface {
	AttachEvidence(ctx context.Context, appointmentID int64, req *models.AttachEvidenceRequest) (*models.AttachEvidenceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
