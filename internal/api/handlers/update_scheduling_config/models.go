package update_scheduling_config

import "github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig/models"

// UpdateConfigRequest HTTP request model
type UpdateConfigRequest struct {
	BranchID           *int64 `json:"branchId,omitempty"`
	ServiceID          *int64 `json:"serviceId,omitempty"`
	SlotStepMinutes    int    `json:"slotStepMinutes"`
	AdvanceBookingDays int    `json:"advanceBookingDays"`
	MinNoticeMinutes   int    `json:"minNoticeMinutes"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateConfigRequest) ToServiceRequest(businessID, userID int64) *models.UpsertConfigRequest {
	return &models.UpsertConfigRequest{
		UserID:             userID,
		BusinessID:         businessID,
		BranchID:           r.BranchID,
		ServiceID:          r.ServiceID,
		SlotStepMinutes:    r.SlotStepMinutes,
		AdvanceBookingDays: r.AdvanceBookingDays,
		MinNoticeMinutes:   r.MinNoticeMinutes,
	}
}
