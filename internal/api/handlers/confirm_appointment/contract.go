package confirm_appointment

import (
	"context"

	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
)

type AppointmentService interface {
	Confirm(ctx context.Context, appointmentID int64, req *models.ConfirmAppointmentRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
