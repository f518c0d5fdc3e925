package start_workflow

import (
	startAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/start_appointment"
)

// StartWorkflowRequest HTTP request model
type StartWorkflowRequest struct {
	Action string `json:"action"` // "begin" | "sign-consent" | "attach-before-evidence" | "skip-before-evidence" | "confirm-start"

	// Подпись клиента (base64) для действия sign-consent
	Signature []byte `json:"signature,omitempty"`
}

// StartWorkflowResponse HTTP response model
type StartWorkflowResponse struct {
	AppointmentID int64   `json:"appointmentId"`
	Status        string  `json:"status"`
	NextStep      string  `json:"nextStep"`
	UploadToken   *string `json:"uploadToken,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *StartWorkflowRequest) ToUseCaseRequest(appointmentID, userID int64) *startAppointment.Request {
	return &startAppointment.Request{
		AppointmentID: appointmentID,
		UserID:        userID,
		Action:        startAppointment.Action(r.Action),
		Signature:     r.Signature,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *startAppointment.Response) *StartWorkflowResponse {
	return &StartWorkflowResponse{
		AppointmentID: resp.AppointmentID,
		Status:        resp.Status,
		NextStep:      string(resp.NextStep),
		UploadToken:   resp.UploadToken,
	}
}
