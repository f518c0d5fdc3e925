package create_appointment

import (
	"time"

	"github.com/salonmate/SM-AppointmentService/pkg/types"

	createAppointment "github.com/salonmate/SM-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BusinessID   int64  `json:"businessId"`
	BranchID     int64  `json:"branchId"`
	SpecialistID int64  `json:"specialistId"`

	ClientID    *int64  `json:"clientId,omitempty"`
	ClientName  *string `json:"clientName,omitempty"`
	ClientPhone *string `json:"clientPhone,omitempty"`

	ServiceIDs []int64 `json:"serviceIds"`

	Date      string `json:"date"`      // "2025-03-10" в зоне бизнеса
	StartTime string `json:"startTime"` // "09:00" в зоне бизнеса

	Notes *string `json:"notes,omitempty"`

	// Запись от имени бизнеса: при подтвержденных правах менеджера
	// создается сразу в статусе confirmed
	CreatedByStaff bool `json:"createdByStaff,omitempty"`
}

// AppointmentServiceResponse snapshot услуги в составе записи
type AppointmentServiceResponse struct {
	ServiceID       int64   `json:"serviceId"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID           int64   `json:"id"`
	BusinessID   int64   `json:"businessId"`
	BranchID     int64   `json:"branchId"`
	SpecialistID int64   `json:"specialistId"`
	ClientID     *int64  `json:"clientId,omitempty"`
	ClientName   *string `json:"clientName,omitempty"`
	ClientPhone  *string `json:"clientPhone,omitempty"`

	Services []AppointmentServiceResponse `json:"services"`

	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Timezone  string `json:"timezone"`

	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`

	Status          string  `json:"status"`
	RequiresConsent bool    `json:"requiresConsent"`
	Notes           *string `json:"notes,omitempty"`
	TotalAmount     float64 `json:"totalAmount"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID int64) (*createAppointment.Request, error) {
	date, err := types.NewDateStringFromString(r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		UserID:         userID,
		BusinessID:     r.BusinessID,
		BranchID:       r.BranchID,
		SpecialistID:   r.SpecialistID,
		ClientID:       r.ClientID,
		ClientName:     r.ClientName,
		ClientPhone:    r.ClientPhone,
		ServiceIDs:     r.ServiceIDs,
		Date:           date,
		StartTime:      startTime,
		Notes:          r.Notes,
		CreatedByStaff: r.CreatedByStaff,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	services := make([]AppointmentServiceResponse, len(resp.Services))
	for i, s := range resp.Services {
		services[i] = AppointmentServiceResponse{
			ServiceID:       s.ServiceID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
	}

	return &AppointmentResponse{
		ID:              resp.ID,
		BusinessID:      resp.BusinessID,
		BranchID:        resp.BranchID,
		SpecialistID:    resp.SpecialistID,
		ClientID:        resp.ClientID,
		ClientName:      resp.ClientName,
		ClientPhone:     resp.ClientPhone,
		Services:        services,
		Date:            resp.Date.String(),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		Timezone:        resp.Timezone,
		StartAt:         resp.StartAt,
		EndAt:           resp.EndAt,
		Status:          resp.Status,
		RequiresConsent: resp.RequiresConsent,
		Notes:           resp.Notes,
		TotalAmount:     resp.TotalAmount,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
