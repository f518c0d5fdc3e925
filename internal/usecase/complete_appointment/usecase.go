package complete_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	appointmentRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	businessClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/lifecycle"
	"github.com/salonmate/SM-AppointmentService/internal/workflow"
	"github.com/salonmate/SM-AppointmentService/pkg/ptr"
)

// UseCase use case процедуры завершения записи.
// Фотофиксация "после" пропускаемая; завершение фиксирует итоговую сумму
// из snapshot услуг и инициирует расчёт комиссии в биллинге
type UseCase struct {
	appointmentRepo AppointmentRepository
	businessClient  BusinessServiceClient
	evidenceClient  EvidenceServiceClient
	billingClient   BillingServiceClient
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	businessClient BusinessServiceClient,
	evidenceClient EvidenceServiceClient,
	billingClient BillingServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		businessClient:  businessClient,
		evidenceClient:  evidenceClient,
		billingClient:   billingClient,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute выполняет действие процедуры завершения записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteAppointment: appointment=%d, user=%d, action=%s",
		req.AppointmentID, req.UserID, req.Action)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CompleteAppointment: validation failed: %v", err)
		return nil, err
	}

	apt, err := uc.loadWithAccessCheck(ctx, req.AppointmentID, req.UserID)
	if err != nil {
		return nil, err
	}

	// Процедура завершения применима только к записи в работе
	if apt.Status != domain.StatusInProgress {
		uc.logger.Warn("CompleteAppointment: appointment id=%d has status %s", apt.ID, apt.Status)
		return nil, fmt.Errorf("%w: status is %s, expected %s", ErrIllegalState, apt.Status, domain.StatusInProgress)
	}

	switch req.Action {
	case ActionBegin:
		return &Response{
			AppointmentID: apt.ID,
			Status:        string(apt.Status),
			NextStep:      workflow.BeginComplete(),
		}, nil
	case ActionAttachAfterEvidence:
		return uc.attachAfterEvidence(ctx, apt)
	case ActionSkipAfterEvidence, ActionFinish:
		// Пропуск фотофиксации сразу ведёт к завершению
		return uc.finish(ctx, apt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if _, ok := ParseAction(string(req.Action)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	return nil
}

func (uc *UseCase) loadWithAccessCheck(ctx context.Context, appointmentID, userID int64) (*domain.Appointment, error) {
	apt, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("CompleteAppointment: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CompleteAppointment: failed to get appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if apt.SpecialistID == userID {
		return apt, nil
	}

	business, err := uc.businessClient.GetBusiness(ctx, apt.BusinessID)
	if err != nil {
		if errors.Is(err, businessClient.ErrBusinessNotFound) {
			return nil, ErrAccessDenied
		}
		uc.logger.Error("CompleteAppointment: failed to get business id=%d: %v", apt.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !business.IsManagedBy(userID) {
		uc.logger.Warn("CompleteAppointment: user id=%d has no access to appointment id=%d", userID, appointmentID)
		return nil, ErrAccessDenied
	}

	return apt, nil
}

func (uc *UseCase) attachAfterEvidence(ctx context.Context, apt *domain.Appointment) (*Response, error) {
	token, err := uc.evidenceClient.RegisterUpload(ctx, apt.ID, domain.EvidenceAfter)
	if err != nil {
		uc.logger.Error("CompleteAppointment: failed to register after-evidence for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to register evidence upload: %v", ErrInternal, err)
	}

	if err := uc.appointmentRepo.SetEvidence(ctx, apt.ID, domain.EvidenceAfter, true); err != nil {
		uc.logger.Error("CompleteAppointment: failed to mark after-evidence for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to mark evidence: %v", ErrInternal, err)
	}
	apt.HasAfterEvidence = true

	next, err := workflow.NextComplete(workflow.StepAfterEvidence)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &Response{
		AppointmentID: apt.ID,
		Status:        string(apt.Status),
		NextStep:      next,
		UploadToken:   ptr.Ptr(token),
	}, nil
}

func (uc *UseCase) finish(ctx context.Context, apt *domain.Appointment) (*Response, error) {
	var completed *domain.Appointment

	// Переход и фиксация суммы выполняются по свежему состоянию под транзакцией
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		fresh, err := uc.appointmentRepo.GetByID(txCtx, apt.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		newStatus, err := lifecycle.Transition(fresh.Status, lifecycle.EventComplete, lifecycle.Guards{})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIllegalState, err)
		}

		// Итоговая сумма - сумма цен услуг, зафиксированных при бронировании
		totalAmount := fresh.ServicesTotal()
		if err := uc.appointmentRepo.FinalizeCompletion(txCtx, fresh.ID, totalAmount); err != nil {
			return fmt.Errorf("%w: failed to finalize completion: %v", ErrInternal, err)
		}

		fresh.Status = newStatus
		fresh.TotalAmount = totalAmount
		completed = fresh
		return nil
	})
	if err != nil {
		uc.logger.Warn("CompleteAppointment: finish failed for id=%d: %v", apt.ID, err)
		return nil, err
	}

	// Комиссия считается после фиксации завершения: сбой биллинга не отменяет
	// завершение, расчёт доедет повторной отправкой
	if err := uc.billingClient.FinalizeCommission(ctx, completed); err != nil {
		uc.logger.Error("CompleteAppointment: billing finalize failed for id=%d: %v", completed.ID, err)
	}

	uc.logger.Info("CompleteAppointment: appointment id=%d completed, total=%.2f",
		completed.ID, completed.TotalAmount)

	return &Response{
		AppointmentID: completed.ID,
		Status:        string(completed.Status),
		NextStep:      workflow.StepDone,
		TotalAmount:   ptr.Ptr(completed.TotalAmount),
	}, nil
}
