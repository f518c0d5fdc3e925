package models

import (
	"errors"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// ConfirmAppointmentRequest запрос на подтверждение записи
type ConfirmAppointmentRequest struct {
	UserID int64 `json:"userId"`
}

// AttachEvidenceRequest запрос на одношаговую фотофиксацию вне workflow
type AttachEvidenceRequest struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind"` // "before" | "after"
}

// GetClientAppointmentsRequest запрос на получение записей клиента
type GetClientAppointmentsRequest struct {
	ClientID int64   `json:"clientId"`
	UserID   int64   `json:"userId"`
	Status   *string `json:"status,omitempty"`
}

// GetBusinessAppointmentsRequest запрос на получение записей бизнеса
// Даты периода - локальные даты в зоне бизнеса, конвертацию в моменты UTC
// выполняет сервис, зная зону бизнеса
type GetBusinessAppointmentsRequest struct {
	UserID          int64             `json:"userId"`
	BusinessID      int64             `json:"businessId"`
	BranchID        *int64            `json:"branchId,omitempty"`
	SpecialistID    *int64            `json:"specialistId,omitempty"`
	StartDate       *types.DateString `json:"startDate,omitempty"`
	EndDate         *types.DateString `json:"endDate,omitempty"`
	Status          *string           `json:"status,omitempty"`
	IncludeInactive bool              `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
// startAt/endAt - уже сконвертированные моменты UTC границ периода
func (r *GetBusinessAppointmentsRequest) ToDomainFilter(startAt, endAt *time.Time) (domain.SpecialistAppointmentsFilter, error) {
	filter := domain.SpecialistAppointmentsFilter{
		BusinessID:      r.BusinessID,
		BranchID:        r.BranchID,
		SpecialistID:    r.SpecialistID,
		StartAt:         startAt,
		EndAt:           endAt,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, ok := domain.ParseAppointmentStatus(*r.Status)
		if !ok {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentServiceResponse snapshot услуги в составе записи
type AppointmentServiceResponse struct {
	ServiceID       int64   `json:"serviceId"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID           int64   `json:"id"`
	BusinessID   int64   `json:"businessId"`
	BranchID     int64   `json:"branchId"`
	SpecialistID int64   `json:"specialistId"`
	ClientID     *int64  `json:"clientId,omitempty"`
	ClientName   *string `json:"clientName,omitempty"`
	ClientPhone  *string `json:"clientPhone,omitempty"`

	Services []AppointmentServiceResponse `json:"services"`

	// Локальное представление в зоне бизнеса (если зона известна)
	Date      string `json:"date,omitempty"`      // "2025-03-10"
	StartTime string `json:"startTime,omitempty"` // "09:00"
	EndTime   string `json:"endTime,omitempty"`   // "10:00"
	Timezone  string `json:"timezone,omitempty"`  // "America/Bogota"

	// Абсолютные моменты в UTC (ISO 8601)
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`

	Status string `json:"status"`

	RequiresConsent   bool `json:"requiresConsent"`
	HasSignedConsent  bool `json:"hasSignedConsent"`
	HasBeforeEvidence bool `json:"hasBeforeEvidence"`
	HasAfterEvidence  bool `json:"hasAfterEvidence"`

	Notes       *string `json:"notes,omitempty"`
	TotalAmount float64 `json:"totalAmount"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// AttachEvidenceResponse ответ одношаговой фотофиксации
type AttachEvidenceResponse struct {
	AppointmentID int64  `json:"appointmentId"`
	Kind          string `json:"kind"`
	UploadToken   string `json:"uploadToken"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO.
// localDate/localStart/localEnd/zone заполняются вызывающим кодом,
// если зона бизнеса известна; пустые значения опускаются в JSON
func FromDomainAppointment(a *domain.Appointment, localDate, localStart, localEnd, zone string) *AppointmentResponse {
	if a == nil {
		return nil
	}

	services := make([]AppointmentServiceResponse, len(a.Services))
	for i, s := range a.Services {
		services[i] = AppointmentServiceResponse{
			ServiceID:       s.ServiceID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		BusinessID:         a.BusinessID,
		BranchID:           a.BranchID,
		SpecialistID:       a.SpecialistID,
		ClientID:           a.ClientID,
		ClientName:         a.ClientName,
		ClientPhone:        a.ClientPhone,
		Services:           services,
		Date:               localDate,
		StartTime:          localStart,
		EndTime:            localEnd,
		Timezone:           zone,
		StartAt:            a.StartAt,
		EndAt:              a.EndAt,
		Status:             string(a.Status),
		RequiresConsent:    a.RequiresConsent,
		HasSignedConsent:   a.HasSignedConsent,
		HasBeforeEvidence:  a.HasBeforeEvidence,
		HasAfterEvidence:   a.HasAfterEvidence,
		Notes:              a.Notes,
		TotalAmount:        a.TotalAmount,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}
