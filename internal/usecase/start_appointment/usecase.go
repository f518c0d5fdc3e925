package start_appointment

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

// UseCase use case процедуры начала записи.
// Последовательность шагов задаёт пакет workflow, смену статуса - пакет lifecycle
type UseCase struct {
	appointmentRepo AppointmentRepository
	businessClient  BusinessServiceClient
	consentClient   ConsentServiceClient
	evidenceClient  EvidenceServiceClient
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	businessClient BusinessServiceClient,
	consentClient ConsentServiceClient,
	evidenceClient EvidenceServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		businessClient:  businessClient,
		consentClient:   consentClient,
		evidenceClient:  evidenceClient,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute выполняет действие процедуры начала записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("StartAppointment: appointment=%d, user=%d, action=%s",
		req.AppointmentID, req.UserID, req.Action)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("StartAppointment: validation failed: %v", err)
		return nil, err
	}

	apt, err := uc.loadWithAccessCheck(ctx, req.AppointmentID, req.UserID)
	if err != nil {
		return nil, err
	}

	// Процедура начала применима только к подтверждённой записи
	if apt.Status != domain.StatusConfirmed {
		uc.logger.Warn("StartAppointment: appointment id=%d has status %s", apt.ID, apt.Status)
		return nil, fmt.Errorf("%w: status is %s, expected %s", ErrIllegalState, apt.Status, domain.StatusConfirmed)
	}

	switch req.Action {
	case ActionBegin:
		return uc.begin(apt), nil
	case ActionSignConsent:
		return uc.signConsent(ctx, req, apt)
	case ActionAttachBeforeEvidence:
		return uc.attachBeforeEvidence(ctx, apt)
	case ActionSkipBeforeEvidence:
		return uc.skipBeforeEvidence(apt)
	case ActionConfirmStart:
		return uc.confirmStart(ctx, apt)
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
	if req.Action == ActionSignConsent && len(req.Signature) == 0 {
		return fmt.Errorf("%w: signature is required for sign-consent", ErrInvalidInput)
	}
	return nil
}

// loadWithAccessCheck загружает запись и проверяет, что действие выполняет
// специалист записи или менеджер бизнеса
func (uc *UseCase) loadWithAccessCheck(ctx context.Context, appointmentID, userID int64) (*domain.Appointment, error) {
	apt, err := uc.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("StartAppointment: appointment id=%d not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("StartAppointment: failed to get appointment id=%d: %v", appointmentID, err)
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
		uc.logger.Error("StartAppointment: failed to get business id=%d: %v", apt.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !business.IsManagedBy(userID) {
		uc.logger.Warn("StartAppointment: user id=%d has no access to appointment id=%d", userID, appointmentID)
		return nil, ErrAccessDenied
	}

	return apt, nil
}

func (uc *UseCase) begin(apt *domain.Appointment) *Response {
	return &Response{
		AppointmentID: apt.ID,
		Status:        string(apt.Status),
		NextStep:      workflow.BeginStart(workflow.GatesFromAppointment(apt)),
	}
}

func (uc *UseCase) signConsent(ctx context.Context, req *Request, apt *domain.Appointment) (*Response, error) {
	if !apt.RequiresConsent {
		return nil, fmt.Errorf("%w: appointment does not require consent", ErrIllegalState)
	}

	if err := uc.consentClient.SubmitSignature(ctx, apt.ID, req.Signature); err != nil {
		uc.logger.Error("StartAppointment: failed to submit signature for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to submit signature: %v", ErrInternal, err)
	}

	if err := uc.appointmentRepo.SetConsentSigned(ctx, apt.ID, true); err != nil {
		uc.logger.Error("StartAppointment: failed to mark consent signed for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to mark consent signed: %v", ErrInternal, err)
	}
	apt.HasSignedConsent = true

	next, err := workflow.NextStart(workflow.StepConsent, workflow.GatesFromAppointment(apt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("StartAppointment: consent signed for appointment id=%d", apt.ID)

	return &Response{
		AppointmentID: apt.ID,
		Status:        string(apt.Status),
		NextStep:      next,
	}, nil
}

func (uc *UseCase) attachBeforeEvidence(ctx context.Context, apt *domain.Appointment) (*Response, error) {
	// Согласие предшествует фотофиксации
	if apt.RequiresConsent && !apt.HasSignedConsent {
		return nil, ErrConsentNotSigned
	}

	token, err := uc.evidenceClient.RegisterUpload(ctx, apt.ID, domain.EvidenceBefore)
	if err != nil {
		uc.logger.Error("StartAppointment: failed to register before-evidence for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to register evidence upload: %v", ErrInternal, err)
	}

	if err := uc.appointmentRepo.SetEvidence(ctx, apt.ID, domain.EvidenceBefore, true); err != nil {
		uc.logger.Error("StartAppointment: failed to mark before-evidence for id=%d: %v", apt.ID, err)
		return nil, fmt.Errorf("%w: failed to mark evidence: %v", ErrInternal, err)
	}
	apt.HasBeforeEvidence = true

	next, err := workflow.NextStart(workflow.StepBeforeEvidence, workflow.GatesFromAppointment(apt))
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

func (uc *UseCase) skipBeforeEvidence(apt *domain.Appointment) (*Response, error) {
	if apt.RequiresConsent && !apt.HasSignedConsent {
		return nil, ErrConsentNotSigned
	}

	// Пропуск шага не имеет побочных эффектов
	next, err := workflow.NextStart(workflow.StepBeforeEvidence, workflow.GatesFromAppointment(apt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &Response{
		AppointmentID: apt.ID,
		Status:        string(apt.Status),
		NextStep:      next,
	}, nil
}

func (uc *UseCase) confirmStart(ctx context.Context, apt *domain.Appointment) (*Response, error) {
	var started *domain.Appointment

	// Переход выполняется по свежему состоянию под serializable транзакцией:
	// гейты перечитываются после возможных конкурентных действий
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		fresh, err := uc.appointmentRepo.GetByID(txCtx, apt.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// Подпись могла прийти в consent-сервис напрямую - сверяем гейт
		if fresh.RequiresConsent && !fresh.HasSignedConsent {
			signed, err := uc.consentClient.HasSignedConsent(txCtx, fresh.ID)
			if err != nil {
				uc.logger.Warn("StartAppointment: consent check failed for id=%d: %v", fresh.ID, err)
			} else if signed {
				if err := uc.appointmentRepo.SetConsentSigned(txCtx, fresh.ID, true); err != nil {
					return fmt.Errorf("%w: failed to mark consent signed: %v", ErrInternal, err)
				}
				fresh.HasSignedConsent = true
			}
		}

		guards := lifecycle.Guards{
			RequiresConsent:  fresh.RequiresConsent,
			HasSignedConsent: fresh.HasSignedConsent,
		}
		newStatus, err := lifecycle.Transition(fresh.Status, lifecycle.EventStart, guards)
		if err != nil {
			var guardErr *lifecycle.GuardNotSatisfiedError
			if errors.As(err, &guardErr) {
				return ErrConsentNotSigned
			}
			return fmt.Errorf("%w: %v", ErrIllegalState, err)
		}

		if err := uc.appointmentRepo.UpdateStatus(txCtx, fresh.ID, newStatus); err != nil {
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		fresh.Status = newStatus
		started = fresh
		return nil
	})
	if err != nil {
		uc.logger.Warn("StartAppointment: confirm-start failed for id=%d: %v", apt.ID, err)
		return nil, err
	}

	uc.logger.Info("StartAppointment: appointment id=%d is now %s", started.ID, started.Status)

	return &Response{
		AppointmentID: started.ID,
		Status:        string(started.Status),
		NextStep:      workflow.StepDone,
	}, nil
}
