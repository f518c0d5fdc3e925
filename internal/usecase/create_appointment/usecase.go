package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	appointmentRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	configRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/schedulingconfig"
	businessClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/timezone"
	"github.com/salonmate/SM-AppointmentService/pkg/ptr"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	configRepo      ConfigRepository
	businessClient  BusinessServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	configRepo ConfigRepository,
	businessClient BusinessServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		configRepo:      configRepo,
		businessClient:  businessClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: user=%d, business=%d, branch=%d, specialist=%d, date=%s, time=%s",
		req.UserID, req.BusinessID, req.BranchID, req.SpecialistID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес (часовая зона, филиалы, рабочие часы)
	business, err := uc.businessClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateAppointment: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	branch := business.FindBranch(req.BranchID)
	if branch == nil {
		uc.logger.Warn("CreateAppointment: branch id=%d not found in business id=%d", req.BranchID, req.BusinessID)
		return nil, ErrBranchNotFound
	}

	// 3. Получаем услуги и фиксируем их snapshot (имя, длительность, цена)
	services := make([]domain.AppointmentService, 0, len(req.ServiceIDs))
	totalDuration := 0
	totalAmount := 0.0
	requiresConsent := false

	for _, serviceID := range req.ServiceIDs {
		service, err := uc.businessClient.GetService(ctx, req.BusinessID, serviceID)
		if err != nil {
			if errors.Is(err, businessClient.ErrServiceNotFound) {
				uc.logger.Warn("CreateAppointment: service id=%d not found", serviceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", serviceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		if !service.AvailableAtBranch(req.BranchID) {
			uc.logger.Warn("CreateAppointment: service id=%d not available at branch id=%d",
				serviceID, req.BranchID)
			return nil, ErrServiceNotAvailableAtBranch
		}

		snapshot := domain.AppointmentService{
			ServiceID:       service.ID,
			Name:            service.Name,
			DurationMinutes: service.DurationMinutes,
			Price:           ptr.Deref(service.Price),
		}
		services = append(services, snapshot)

		totalDuration += snapshot.DurationMinutes
		totalAmount += snapshot.Price
		requiresConsent = requiresConsent || service.RequiresConsent
	}

	if totalDuration <= 0 {
		uc.logger.Warn("CreateAppointment: total service duration is zero")
		return nil, fmt.Errorf("%w: total service duration must be positive", ErrInvalidInput)
	}

	// 4. Начальный статус: запись сотрудника бизнеса сразу подтверждена
	status := domain.StatusPending
	if req.CreatedByStaff && business.IsManagedBy(req.UserID) {
		status = domain.StatusConfirmed
	}

	now := uc.timeProvider.Now()

	var created *domain.Appointment

	// 5. Все проверки расписания и создание идут в одной serializable транзакции:
	// снимок существующих записей читается с блокировкой, окончательную защиту
	// от двойного бронирования дает exclusion constraint в БД
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Конфигурация расписания с учетом иерархии
		config, err := uc.configRepo.GetConfigWithHierarchy(txCtx, req.BusinessID, ptr.Ptr(req.BranchID), ptr.Ptr(req.ServiceIDs[0]))
		if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}
		if config == nil {
			config = &domain.SchedulingConfig{
				SlotStepMinutes:    domain.DefaultSlotStepMinutes,
				AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
				MinNoticeMinutes:   domain.DefaultMinNoticeMinutes,
			}
		}

		// 5.2. Дата против advanceBookingDays (по локальной дате бизнеса)
		todayCivil, err := timezone.ToCivil(now, business.Timezone)
		if err != nil {
			return err
		}
		if err := validateDate(req.Date, todayCivil.Date, config.AdvanceBookingDays); err != nil {
			return err
		}

		// 5.3. Интервал записи должен помещаться в рабочие часы филиала
		weekday, err := req.Date.Weekday()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		day := branch.WorkingHours.ToDomain().ForWeekday(weekday)
		if err := validateWithinWorkingHours(day, req.StartTime, totalDuration); err != nil {
			return err
		}

		// 5.4. Конвертация локального времени в момент UTC
		startAt, err := timezone.ToInstant(domain.CivilDateTime{Date: req.Date, Time: req.StartTime}, business.Timezone)
		if err != nil {
			return err
		}
		endAt := startAt.Add(time.Duration(totalDuration) * time.Minute)

		// 5.5. Минимальное время до начала записи
		if startAt.Before(now.Add(time.Duration(config.MinNoticeMinutes) * time.Minute)) {
			return ErrTooLateToBook
		}

		// 5.6. Проверка пересечений с активными записями специалиста (FOR UPDATE)
		filter := domain.SpecialistAppointmentsFilter{
			BusinessID:      req.BusinessID,
			BranchID:        ptr.Ptr(req.BranchID),
			SpecialistID:    ptr.Ptr(req.SpecialistID),
			StartAt:         &startAt,
			EndAt:           &endAt,
			IncludeInactive: false,
		}
		existing, err := uc.appointmentRepo.GetWithFilter(txCtx, filter)
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}
		if hasOverlap(startAt, endAt, req.SpecialistID, existing) {
			return ErrSlotNotAvailable
		}

		// 5.7. Создание записи
		apt := &domain.Appointment{
			BusinessID:      req.BusinessID,
			BranchID:        req.BranchID,
			SpecialistID:    req.SpecialistID,
			ClientID:        req.ClientID,
			ClientName:      req.ClientName,
			ClientPhone:     req.ClientPhone,
			Services:        services,
			StartAt:         startAt,
			EndAt:           endAt,
			Status:          status,
			RequiresConsent: requiresConsent,
			Notes:           req.Notes,
			TotalAmount:     totalAmount,
		}

		created, err = uc.appointmentRepo.Create(txCtx, apt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Warn("CreateAppointment: failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateAppointment: created appointment id=%d, status=%s, start=%s",
		created.ID, created.Status, created.StartAt.Format(time.RFC3339))

	return uc.buildResponse(created, business.Timezone)
}

func (uc *UseCase) buildResponse(apt *domain.Appointment, zone string) (*Response, error) {
	startCivil, err := timezone.ToCivil(apt.StartAt, zone)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to render start time: %v", ErrInternal, err)
	}
	endCivil, err := timezone.ToCivil(apt.EndAt, zone)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to render end time: %v", ErrInternal, err)
	}

	return &Response{
		ID:              apt.ID,
		BusinessID:      apt.BusinessID,
		BranchID:        apt.BranchID,
		SpecialistID:    apt.SpecialistID,
		ClientID:        apt.ClientID,
		ClientName:      apt.ClientName,
		ClientPhone:     apt.ClientPhone,
		Services:        apt.Services,
		Date:            startCivil.Date,
		StartTime:       startCivil.Time,
		EndTime:         endCivil.Time,
		Timezone:        zone,
		StartAt:         apt.StartAt,
		EndAt:           apt.EndAt,
		Status:          string(apt.Status),
		RequiresConsent: apt.RequiresConsent,
		Notes:           apt.Notes,
		TotalAmount:     apt.TotalAmount,
		CreatedAt:       apt.CreatedAt,
		UpdatedAt:       apt.UpdatedAt,
	}, nil
}
