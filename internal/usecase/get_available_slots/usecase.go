package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	configRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/schedulingconfig"
	businessClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/timezone"
	"github.com/salonmate/SM-AppointmentService/pkg/ptr"
)

// UseCase use case для получения доступных слотов для записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	businessClient  BusinessServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	businessClient BusinessServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		configRepo:      configRepo,
		businessClient:  businessClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, branch=%d, specialist=%d, services=%v, date=%s",
		req.BusinessID, req.BranchID, req.SpecialistID, req.ServiceIDs, req.Date)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем бизнес (часовая зона, филиалы, рабочие часы)
	business, err := uc.businessClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 4. Проверяем существование филиала
	if err := validateBranchExists(business, req.BranchID); err != nil {
		uc.logger.Warn("GetAvailableSlots: branch id=%d not found in business id=%d", req.BranchID, req.BusinessID)
		return nil, err
	}
	branch := business.FindBranch(req.BranchID)

	// 5. Получаем услуги и считаем суммарную длительность
	totalDuration := 0
	for _, serviceID := range req.ServiceIDs {
		service, err := uc.businessClient.GetService(ctx, req.BusinessID, serviceID)
		if err != nil {
			if errors.Is(err, businessClient.ErrServiceNotFound) {
				uc.logger.Warn("GetAvailableSlots: service id=%d not found", serviceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", serviceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		if err := validateServiceAtBranch(service, req.BranchID); err != nil {
			uc.logger.Warn("GetAvailableSlots: service id=%d not available at branch id=%d",
				serviceID, req.BranchID)
			return nil, err
		}

		totalDuration += service.DurationMinutes
	}

	if totalDuration <= 0 {
		uc.logger.Warn("GetAvailableSlots: total service duration is zero")
		return nil, fmt.Errorf("%w: total service duration must be positive", ErrMissingParameters)
	}

	// 6. Получаем конфигурацию расписания с учетом иерархии
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, req.BusinessID, ptr.Ptr(req.BranchID), ptr.Ptr(req.ServiceIDs[0]))
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}

	// Если конфигурация не найдена, используем дефолтные значения
	if config == nil {
		config = &domain.SchedulingConfig{
			SlotStepMinutes:    domain.DefaultSlotStepMinutes,
			AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
			MinNoticeMinutes:   domain.DefaultMinNoticeMinutes,
		}
		uc.logger.Info("GetAvailableSlots: using default config for business=%d, branch=%d",
			req.BusinessID, req.BranchID)
	} else {
		uc.logger.Info("GetAvailableSlots: using config id=%d", config.ID)
	}

	// 7. Валидация даты против advanceBookingDays (по локальной дате бизнеса)
	todayCivil, err := timezone.ToCivil(now, business.Timezone)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to resolve business local date: %v", err)
		return nil, err
	}
	if err := validateDate(req.Date, todayCivil.Date, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 8. Рабочие часы филиала на этот день недели
	weekday, err := req.Date.Weekday()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	day := branch.WorkingHours.ToDomain().ForWeekday(weekday)

	if !day.IsOpen {
		uc.logger.Info("GetAvailableSlots: branch id=%d is closed on %s", req.BranchID, req.Date)
		return uc.emptyResponse(req, business.Timezone), nil
	}

	// 9. Снимок существующих записей специалиста на эту локальную дату
	// Снимок читается непосредственно перед вычислением; при конкурентных записях
	// авторитетная проверка пересечений остаётся за constraint в БД
	rangeStart, rangeEnd, err := timezone.DateRangeToInstantRange(req.Date, req.Date, business.Timezone)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to convert date range: %v", err)
		return nil, err
	}

	filter := domain.SpecialistAppointmentsFilter{
		BusinessID:      req.BusinessID,
		BranchID:        ptr.Ptr(req.BranchID),
		SpecialistID:    ptr.Ptr(req.SpecialistID),
		StartAt:         &rangeStart,
		EndAt:           &rangeEnd,
		IncludeInactive: false, // Только активные записи блокируют слоты
	}

	existing, err := uc.appointmentRepo.GetWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 10. Вычисляем слоты
	notBefore := now.Add(time.Duration(config.MinNoticeMinutes) * time.Minute)
	slots, err := computeSlots(
		day,
		req.Date,
		business.Timezone,
		config.SlotStepMinutes,
		totalDuration,
		req.SpecialistID,
		existing,
		notBefore,
	)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: computed %d slots for specialist=%d, branch=%d, date=%s",
		len(slots), req.SpecialistID, req.BranchID, req.Date)

	return &Response{
		Date:         req.Date,
		BusinessID:   req.BusinessID,
		BranchID:     req.BranchID,
		SpecialistID: req.SpecialistID,
		Timezone:     business.Timezone,
		Slots:        slots,
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request, zone string) *Response {
	return &Response{
		Date:         req.Date,
		BusinessID:   req.BusinessID,
		BranchID:     req.BranchID,
		SpecialistID: req.SpecialistID,
		Timezone:     zone,
		Slots:        []domain.AvailableSlot{},
	}
}
