package start_workflow

import (
	"context"

	startAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/start_appointment"
)

type StartAppointmentUseCase interface {
	Execute(ctx context.Context, req *startAppointment.Request) (*startAppointment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
