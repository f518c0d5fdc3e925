package models

import (
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

// Request модели

// GetConfigRequest запрос на получение конфигурации (для иерархического поиска)
// BranchID и ServiceID могут быть nil для иерархического поиска
type GetConfigRequest struct {
	BusinessID int64  `json:"businessId"`
	BranchID   *int64 `json:"branchId,omitempty"`  // nil означает любой филиал
	ServiceID  *int64 `json:"serviceId,omitempty"` // nil означает любая услуга
}

// UpsertConfigRequest запрос на создание или обновление конфигурации
type UpsertConfigRequest struct {
	UserID             int64  `json:"userId"`
	BusinessID         int64  `json:"businessId"`
	BranchID           *int64 `json:"branchId,omitempty"`  // NULL = для всех филиалов
	ServiceID          *int64 `json:"serviceId,omitempty"` // NULL = для всех услуг
	SlotStepMinutes    int    `json:"slotStepMinutes"`     // 15, 30, 60, etc.
	AdvanceBookingDays int    `json:"advanceBookingDays"`  // 0 = без ограничений
	MinNoticeMinutes   int    `json:"minNoticeMinutes"`    // Минимальное время до записи
}

// ToDomainConfig конвертирует UpsertConfigRequest в domain модель
func (r *UpsertConfigRequest) ToDomainConfig() *domain.SchedulingConfig {
	return &domain.SchedulingConfig{
		BusinessID:         r.BusinessID,
		BranchID:           r.BranchID,
		ServiceID:          r.ServiceID,
		SlotStepMinutes:    r.SlotStepMinutes,
		AdvanceBookingDays: r.AdvanceBookingDays,
		MinNoticeMinutes:   r.MinNoticeMinutes,
	}
}

// Response модели

// ConfigResponse ответ с данными конфигурации расписания
type ConfigResponse struct {
	ID                 int64     `json:"id"`
	BusinessID         int64     `json:"businessId"`
	BranchID           *int64    `json:"branchId,omitempty"`
	ServiceID          *int64    `json:"serviceId,omitempty"`
	SlotStepMinutes    int       `json:"slotStepMinutes"`
	AdvanceBookingDays int       `json:"advanceBookingDays"`
	MinNoticeMinutes   int       `json:"minNoticeMinutes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ConfigListResponse ответ со списком конфигураций
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.SchedulingConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	return &ConfigResponse{
		ID:                 c.ID,
		BusinessID:         c.BusinessID,
		BranchID:           c.BranchID,
		ServiceID:          c.ServiceID,
		SlotStepMinutes:    c.SlotStepMinutes,
		AdvanceBookingDays: c.AdvanceBookingDays,
		MinNoticeMinutes:   c.MinNoticeMinutes,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.SchedulingConfig) *ConfigListResponse {
	if configs == nil {
		return &ConfigListResponse{
			Configs: []ConfigResponse{},
		}
	}

	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, len(configs)),
	}

	for i, config := range configs {
		if configResp := FromDomainConfig(config); configResp != nil {
			resp.Configs[i] = *configResp
		}
	}

	return resp
}
