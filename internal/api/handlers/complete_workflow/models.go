package complete_workflow

import (
	completeAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/complete_appointment"
)

// CompleteWorkflowRequest HTTP request model
type CompleteWorkflowRequest struct {
	Action string `json:"action"` // "begin" | "attach-after-evidence" | "skip-after-evidence" | "finish"
}

// CompleteWorkflowResponse HTTP response model
type CompleteWorkflowResponse struct {
	AppointmentID int64    `json:"appointmentId"`
	Status        string   `json:"status"`
	NextStep      string   `json:"nextStep"`
	UploadToken   *string  `json:"uploadToken,omitempty"`
	TotalAmount   *float64 `json:"totalAmount,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CompleteWorkflowRequest) ToUseCaseRequest(appointmentID, userID int64) *completeAppointment.Request {
	return &completeAppointment.Request{
		AppointmentID: appointmentID,
		UserID:        userID,
		Action:        completeAppointment.Action(r.Action),
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *completeAppointment.Response) *CompleteWorkflowResponse {
	return &CompleteWorkflowResponse{
		AppointmentID: resp.AppointmentID,
		Status:        resp.Status,
		NextStep:      string(resp.NextStep),
		UploadToken:   resp.UploadToken,
		TotalAmount:   resp.TotalAmount,
	}
}
