package get_available_slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/salonmate/SM-AppointmentService/pkg/types"

	getAvailableSlots "github.com/salonmate/SM-AppointmentService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date         string          `json:"date"`
	BusinessID   int64           `json:"businessId"`
	BranchID     int64           `json:"branchId"`
	SpecialistID int64           `json:"specialistId"`
	Timezone     string          `json:"timezone"`
	Slots        []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string    `json:"startTime"` // "09:00" в зоне бизнеса
	EndTime         string    `json:"endTime"`   // "10:00" в зоне бизнеса
	StartAt         time.Time `json:"startAt"`   // момент UTC
	EndAt           time.Time `json:"endAt"`     // момент UTC
	DurationMinutes int       `json:"durationMinutes"`
}

// ParseServiceIDs парсит список ID услуг из строки "1,2,3"
func ParseServiceIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	serviceIDs := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid service id %q", part)
		}
		serviceIDs = append(serviceIDs, id)
	}
	return serviceIDs, nil
}

// ToUseCaseRequest конвертирует параметры HTTP запроса в модель use case
func ToUseCaseRequest(businessID, branchID, specialistID int64, serviceIDs []int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := types.NewDateStringFromString(dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		BusinessID:   businessID,
		BranchID:     branchID,
		SpecialistID: specialistID,
		ServiceIDs:   serviceIDs,
		Date:         date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			EndTime:         slot.EndTime.String(),
			StartAt:         slot.StartAt,
			EndAt:           slot.EndAt,
			DurationMinutes: slot.DurationMinutes,
		}
	}

	return &AvailableSlotsResponse{
		Date:         resp.Date.String(),
		BusinessID:   resp.BusinessID,
		BranchID:     resp.BranchID,
		SpecialistID: resp.SpecialistID,
		Timezone:     resp.Timezone,
		Slots:        slots,
	}
}
