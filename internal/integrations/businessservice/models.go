package businessservice

import (
	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// Business модель бизнеса (салона/клиники) из BusinessService
type Business struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Timezone   string   `json:"timezone"` // IANA зона, например "America/Bogota"
	ManagerIDs []int64  `json:"manager_ids"`
	Branches   []Branch `json:"branches"`
}

// Branch филиал бизнеса со своим расписанием работы
type Branch struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	WorkingHours WeekSchedule `json:"working_hours"`
}

// WeekSchedule расписание работы филиала по дням недели (wire-формат)
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// DaySchedule рабочие часы на один день недели (локальное время бизнеса)
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "HH:MM"
	CloseTime *string `json:"close_time,omitempty"` // "HH:MM"
}

// Service модель услуги из каталога BusinessService
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"business_id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
	RequiresConsent bool     `json:"requires_consent"` // услуга требует информированного согласия
	BranchIDs       []int64  `json:"branch_ids"`
}

// ErrorResponse модель ошибки от BusinessService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsManagedBy возвращает true, если пользователь является менеджером бизнеса
func (b *Business) IsManagedBy(userID int64) bool {
	for _, id := range b.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// FindBranch возвращает филиал по ID или nil, если филиал не найден
func (b *Business) FindBranch(branchID int64) *Branch {
	for i := range b.Branches {
		if b.Branches[i].ID == branchID {
			return &b.Branches[i]
		}
	}
	return nil
}

// AvailableAtBranch возвращает true, если услуга оказывается в указанном филиале
func (s *Service) AvailableAtBranch(branchID int64) bool {
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// ToDomain конвертирует wire-формат расписания в доменную модель
func (w WeekSchedule) ToDomain() domain.WeekSchedule {
	return domain.WeekSchedule{
		Monday:    w.Monday.toDomain(),
		Tuesday:   w.Tuesday.toDomain(),
		Wednesday: w.Wednesday.toDomain(),
		Thursday:  w.Thursday.toDomain(),
		Friday:    w.Friday.toDomain(),
		Saturday:  w.Saturday.toDomain(),
		Sunday:    w.Sunday.toDomain(),
	}
}

func (d DaySchedule) toDomain() domain.DaySchedule {
	out := domain.DaySchedule{IsOpen: d.IsOpen}
	if d.OpenTime != nil {
		t := types.TimeString(*d.OpenTime)
		out.OpenTime = &t
	}
	if d.CloseTime != nil {
		t := types.TimeString(*d.CloseTime)
		out.CloseTime = &t
	}
	return out
}
