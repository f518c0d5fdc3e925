package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	appointmentRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	businessClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/lifecycle"
	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
	"github.com/salonmate/SM-AppointmentService/internal/timezone"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	businessClient  BusinessServiceClient
	evidenceClient  EvidenceServiceClient
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	businessClient BusinessServiceClient,
	evidenceClient EvidenceServiceClient,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		businessClient:  businessClient,
		evidenceClient:  evidenceClient,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Проверяет права доступа - запись видят её клиент, специалист и менеджер бизнеса
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	apt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, apt, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, err
	}

	zone := s.resolveTimezone(ctx, apt.BusinessID)

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return s.toResponse(apt, zone), nil
}

// GetClientAppointments получает историю записей клиента
// Клиент видит только собственные записи; опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d, status=%v", req.ClientID, req.Status)

	if req.UserID != req.ClientID {
		s.logger.Warn("GetClientAppointments: user=%d requested appointments of client=%d", req.UserID, req.ClientID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, ok := domain.ParseAppointmentStatus(*req.Status)
		if !ok {
			s.logger.Warn("GetClientAppointments: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.appointmentRepo.GetByClientID(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	// Записи клиента могут относиться к разным бизнесам - зоны кешируются на запрос
	zones := make(map[int64]string)
	resp := &models.AppointmentListResponse{
		Appointments: make([]models.AppointmentResponse, 0, len(appointments)),
	}
	for _, apt := range appointments {
		zone, ok := zones[apt.BusinessID]
		if !ok {
			zone = s.resolveTimezone(ctx, apt.BusinessID)
			zones[apt.BusinessID] = zone
		}
		resp.Appointments = append(resp.Appointments, *s.toResponse(apt, zone))
	}

	s.logger.Info("GetClientAppointments: successfully fetched %d appointments for client=%d",
		len(appointments), req.ClientID)
	return resp, nil
}

// GetBusinessAppointments получает записи бизнеса с гибкой фильтрацией
// Поддерживает фильтрацию по филиалу, специалисту, периоду и статусу
// Доступно только менеджерам бизнеса
func (s *Service) GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetBusinessAppointments: fetching appointments for business=%d, user=%d", req.BusinessID, req.UserID)

	business, err := s.checkManagerAccess(ctx, req.BusinessID, req.UserID)
	if err != nil {
		return nil, err
	}

	// Границы периода - локальные даты в зоне бизнеса
	var startAt, endAt *time.Time
	if req.StartDate != nil && req.EndDate != nil {
		rangeStart, rangeEnd, err := timezone.DateRangeToInstantRange(*req.StartDate, *req.EndDate, business.Timezone)
		if err != nil {
			s.logger.Warn("GetBusinessAppointments: invalid period for business=%d: %v", req.BusinessID, err)
			return nil, fmt.Errorf("%w: invalid period", ErrInvalidInput)
		}
		startAt, endAt = &rangeStart, &rangeEnd
	}

	filter, err := req.ToDomainFilter(startAt, endAt)
	if err != nil {
		s.logger.Warn("GetBusinessAppointments: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessAppointments: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessAppointments - repository error: %v", ErrInternal, err)
	}

	resp := &models.AppointmentListResponse{
		Appointments: make([]models.AppointmentResponse, 0, len(appointments)),
	}
	for _, apt := range appointments {
		resp.Appointments = append(resp.Appointments, *s.toResponse(apt, business.Timezone))
	}

	s.logger.Info("GetBusinessAppointments: successfully fetched %d appointments for business=%d",
		len(appointments), req.BusinessID)
	return resp, nil
}

// Confirm подтверждает ожидающую запись
// Доступно только менеджерам бизнеса; переход выполняет lifecycle
func (s *Service) Confirm(ctx context.Context, appointmentID int64, req *models.ConfirmAppointmentRequest) error {
	s.logger.Info("Confirm: confirming appointment id=%d by user=%d", appointmentID, req.UserID)

	apt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Confirm: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	if _, err := s.checkManagerAccess(ctx, apt.BusinessID, req.UserID); err != nil {
		return err
	}

	newStatus, err := lifecycle.Transition(apt.Status, lifecycle.EventConfirm, lifecycle.Guards{})
	if err != nil {
		s.logger.Warn("Confirm: appointment id=%d cannot be confirmed, status=%s", appointmentID, apt.Status)
		return ErrCannotConfirm
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, newStatus); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Confirm: successfully confirmed appointment id=%d", appointmentID)
	return nil
}

// Cancel отменяет запись
// Клиент может отменить только свою запись, менеджер - любую запись бизнеса
// Непустая причина отмены обязательна
func (s *Service) Cancel(ctx context.Context, appointmentID int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", appointmentID, req.UserID)

	apt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", appointmentID)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Клиент отменяет своё, иначе требуется доступ менеджера
	if !s.isClientOwner(apt, req.UserID) {
		if _, err := s.checkManagerAccess(ctx, apt.BusinessID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to cancel appointment id=%d", req.UserID, appointmentID)
			return ErrAccessDenied
		}
	}

	guards := lifecycle.Guards{CancellationReason: req.CancellationReason}
	if _, err := lifecycle.Transition(apt.Status, lifecycle.EventCancel, guards); err != nil {
		var guardErr *lifecycle.GuardNotSatisfiedError
		if errors.As(err, &guardErr) {
			s.logger.Warn("Cancel: missing cancellation reason for appointment id=%d", appointmentID)
			return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
		}
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", appointmentID, apt.Status)
		return ErrCannotCancel
	}

	if err := s.appointmentRepo.Cancel(ctx, appointmentID, req.CancellationReason); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", appointmentID)
	return nil
}

// AttachEvidence одношаговая фотофиксация вне процедур начала/завершения
// Доступно специалисту записи и менеджерам бизнеса
func (s *Service) AttachEvidence(ctx context.Context, appointmentID int64, req *models.AttachEvidenceRequest) (*models.AttachEvidenceResponse, error) {
	s.logger.Info("AttachEvidence: appointment id=%d, kind=%s, user=%d", appointmentID, req.Kind, req.UserID)

	kind, ok := domain.ParseEvidenceKind(req.Kind)
	if !ok {
		s.logger.Warn("AttachEvidence: invalid kind=%s", req.Kind)
		return nil, fmt.Errorf("%w: invalid evidence kind", ErrInvalidInput)
	}

	apt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("AttachEvidence: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("AttachEvidence: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: AttachEvidence - repository error: %v", ErrInternal, err)
	}

	if apt.SpecialistID != req.UserID {
		if _, err := s.checkManagerAccess(ctx, apt.BusinessID, req.UserID); err != nil {
			s.logger.Warn("AttachEvidence: access denied for user=%d to appointment id=%d", req.UserID, appointmentID)
			return nil, ErrAccessDenied
		}
	}

	// Фотофиксация не имеет смысла для завершённых и отменённых записей
	if apt.IsTerminal() {
		s.logger.Warn("AttachEvidence: appointment id=%d is terminal, status=%s", appointmentID, apt.Status)
		return nil, fmt.Errorf("%w: appointment is %s", ErrInvalidInput, apt.Status)
	}

	token, err := s.evidenceClient.RegisterUpload(ctx, appointmentID, kind)
	if err != nil {
		s.logger.Error("AttachEvidence: failed to register upload for id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: AttachEvidence - failed to register upload: %v", ErrInternal, err)
	}

	if err := s.appointmentRepo.SetEvidence(ctx, appointmentID, kind, true); err != nil {
		s.logger.Error("AttachEvidence: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: AttachEvidence - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AttachEvidence: registered %s evidence for appointment id=%d", kind, appointmentID)
	return &models.AttachEvidenceResponse{
		AppointmentID: appointmentID,
		Kind:          string(kind),
		UploadToken:   token,
	}, nil
}

// Вспомогательные методы

// isClientOwner возвращает true, если пользователь - клиент записи
func (s *Service) isClientOwner(apt *domain.Appointment, userID int64) bool {
	return apt.ClientID != nil && *apt.ClientID == userID
}

// checkUserAccess проверяет, что пользователь имеет доступ к записи
// Запись видят её клиент, специалист и менеджеры бизнеса
func (s *Service) checkUserAccess(ctx context.Context, apt *domain.Appointment, userID int64) error {
	if s.isClientOwner(apt, userID) || apt.SpecialistID == userID {
		return nil
	}

	if _, err := s.checkManagerAccess(ctx, apt.BusinessID, userID); err != nil {
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером бизнеса
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, userID int64) (*businessClient.Business, error) {
	business, err := s.businessClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			s.logger.Warn("checkManagerAccess: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: checkManagerAccess - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManagedBy(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, businessID)
		return nil, ErrAccessDenied
	}

	return business, nil
}

// resolveTimezone возвращает зону бизнеса для локального представления времени
// Недоступность бизнеса не мешает отдать запись с моментами UTC
func (s *Service) resolveTimezone(ctx context.Context, businessID int64) string {
	business, err := s.businessClient.GetBusiness(ctx, businessID)
	if err != nil {
		s.logger.Warn("resolveTimezone: failed to get business id=%d: %v", businessID, err)
		return ""
	}
	return business.Timezone
}

// toResponse конвертирует запись в DTO с локальным представлением времени
func (s *Service) toResponse(apt *domain.Appointment, zone string) *models.AppointmentResponse {
	if zone == "" {
		return models.FromDomainAppointment(apt, "", "", "", "")
	}

	startCivil, err := timezone.ToCivil(apt.StartAt, zone)
	if err != nil {
		s.logger.Warn("toResponse: failed to render local time for appointment id=%d: %v", apt.ID, err)
		return models.FromDomainAppointment(apt, "", "", "", "")
	}
	endCivil, err := timezone.ToCivil(apt.EndAt, zone)
	if err != nil {
		s.logger.Warn("toResponse: failed to render local time for appointment id=%d: %v", apt.ID, err)
		return models.FromDomainAppointment(apt, "", "", "", "")
	}

	return models.FromDomainAppointment(apt,
		startCivil.Date.String(), startCivil.Time.String(), endCivil.Time.String(), zone)
}
