package schedulingconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	configRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/schedulingconfig"
	businessClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig/models"
)

// Service сервис для работы с конфигурацией расписания
type Service struct {
	configRepo     ConfigRepository
	businessClient BusinessServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	businessClient BusinessServiceClient,
	logger Logger,
) *Service {
	return &Service{
		configRepo:     configRepo,
		businessClient: businessClient,
		logger:         logger,
	}
}

// GetWithHierarchy получает конфигурацию с учетом иерархии приоритетов
// Публичный метод - используется для получения актуальной конфигурации при записи
// Приоритет: service@branch > branch > service > global
func (s *Service) GetWithHierarchy(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("GetWithHierarchy: fetching config for business=%d, branch=%v, service=%v",
		req.BusinessID, req.BranchID, req.ServiceID)

	config, err := s.configRepo.GetConfigWithHierarchy(ctx, req.BusinessID, req.BranchID, req.ServiceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Warn("GetWithHierarchy: no config found for business=%d, branch=%v, service=%v",
				req.BusinessID, req.BranchID, req.ServiceID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("GetWithHierarchy: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetWithHierarchy - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetWithHierarchy: successfully fetched config id=%d (level: %s)",
		config.ID, s.getConfigLevel(config))
	return models.FromDomainConfig(config), nil
}

// GetAllByBusiness получает все конфигурации бизнеса
// Доступно только менеджерам бизнеса
func (s *Service) GetAllByBusiness(ctx context.Context, businessID int64, userID int64) (*models.ConfigListResponse, error) {
	s.logger.Info("GetAllByBusiness: fetching configs for business=%d by user=%d", businessID, userID)

	if err := s.checkManagerAccess(ctx, businessID, userID); err != nil {
		return nil, err
	}

	configs, err := s.configRepo.GetAllByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("GetAllByBusiness: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetAllByBusiness - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllByBusiness: successfully fetched %d configs for business=%d", len(configs), businessID)
	return models.FromDomainConfigList(configs), nil
}

// Upsert создает конфигурацию или обновляет существующую для той же
// комбинации бизнеса, филиала и услуги
// Доступно только менеджерам бизнеса
func (s *Service) Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Upsert: config for business=%d, branch=%v, service=%v by user=%d",
		req.BusinessID, req.BranchID, req.ServiceID, req.UserID)

	// 1. Валидируем параметры конфигурации
	if err := s.validateConfigData(req.SlotStepMinutes, req.AdvanceBookingDays, req.MinNoticeMinutes); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес для проверки прав доступа и филиалов
	business, err := s.businessClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			s.logger.Warn("Upsert: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("Upsert: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 3. Проверяем права доступа (только менеджер бизнеса)
	if !business.IsManagedBy(req.UserID) {
		s.logger.Warn("Upsert: user=%d is not a manager of business=%d", req.UserID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	// 4. Если указан branchID, проверяем его существование
	if req.BranchID != nil {
		if business.FindBranch(*req.BranchID) == nil {
			s.logger.Warn("Upsert: branch id=%d not found in business=%d", *req.BranchID, req.BusinessID)
			return nil, ErrBranchNotFound
		}
	}

	// 5. Если указан serviceID, проверяем его существование и привязку к филиалу
	if req.ServiceID != nil {
		service, err := s.businessClient.GetService(ctx, req.BusinessID, *req.ServiceID)
		if err != nil {
			if errors.Is(err, businessClient.ErrServiceNotFound) {
				s.logger.Warn("Upsert: service id=%d not found in business=%d", *req.ServiceID, req.BusinessID)
				return nil, ErrServiceNotFound
			}
			s.logger.Error("Upsert: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		if req.BranchID != nil && !service.AvailableAtBranch(*req.BranchID) {
			s.logger.Warn("Upsert: service id=%d is not available at branch id=%d",
				*req.ServiceID, *req.BranchID)
			return nil, fmt.Errorf("%w: service is not available at this branch", ErrInvalidInput)
		}
	}

	// 6. Обновляем существующую конфигурацию или создаем новую
	existing, err := s.configRepo.GetByBusinessBranchAndService(ctx, req.BusinessID, req.BranchID, req.ServiceID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		s.logger.Error("Upsert: failed to check existing config: %v", err)
		return nil, fmt.Errorf("%w: failed to check existing config: %v", ErrInternal, err)
	}

	if existing != nil {
		existing.SlotStepMinutes = req.SlotStepMinutes
		existing.AdvanceBookingDays = req.AdvanceBookingDays
		existing.MinNoticeMinutes = req.MinNoticeMinutes

		if err := s.configRepo.Update(ctx, existing); err != nil {
			s.logger.Error("Upsert: repository error for config id=%d: %v", existing.ID, err)
			return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
		}

		s.logger.Info("Upsert: successfully updated config id=%d", existing.ID)
		return models.FromDomainConfig(existing), nil
	}

	created, err := s.configRepo.Create(ctx, req.ToDomainConfig())
	if err != nil {
		s.logger.Error("Upsert: repository error: %v", err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully created config id=%d", created.ID)
	return models.FromDomainConfig(created), nil
}

// Вспомогательные методы

// checkManagerAccess проверяет, что пользователь является менеджером бизнеса
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, userID int64) error {
	business, err := s.businessClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			s.logger.Warn("checkManagerAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManagedBy(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, businessID)
		return ErrAccessDenied
	}

	return nil
}

// validateConfigData валидирует параметры конфигурации
func (s *Service) validateConfigData(slotStep, advanceDays, minNotice int) error {
	if slotStep < domain.MinSlotStepMinutes || slotStep > domain.MaxSlotStepMinutes {
		return fmt.Errorf("%w: slotStepMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotStepMinutes, domain.MaxSlotStepMinutes)
	}

	if advanceDays < domain.MinAdvanceBookingDays || advanceDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if minNotice < domain.MinNoticeMinutesLowerBound || minNotice > domain.MaxNoticeMinutesUpperBound {
		return fmt.Errorf("%w: minNoticeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinNoticeMinutesLowerBound, domain.MaxNoticeMinutesUpperBound)
	}

	return nil
}

// getConfigLevel возвращает строковое представление уровня конфигурации для логирования
func (s *Service) getConfigLevel(config *domain.SchedulingConfig) string {
	if config.IsServiceAtBranch() {
		return "service@branch"
	}
	if config.IsBranchSpecific() {
		return "branch"
	}
	if config.ServiceID != nil {
		return "service"
	}
	return "global"
}
