package complete_appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	storageRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/workflow"
)

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	getErr      error

	evidenceKind   *domain.EvidenceKind
	finalizedTotal *float64
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	apt := *f.appointment
	return &apt, nil
}

func (f *fakeAppointmentRepo) SetEvidence(_ context.Context, _ int64, kind domain.EvidenceKind, present bool) error {
	f.evidenceKind = &kind
	if kind == domain.EvidenceAfter {
		f.appointment.HasAfterEvidence = present
	}
	return nil
}

func (f *fakeAppointmentRepo) FinalizeCompletion(_ context.Context, _ int64, totalAmount float64) error {
	f.finalizedTotal = &totalAmount
	f.appointment.Status = domain.StatusCompleted
	f.appointment.TotalAmount = totalAmount
	return nil
}

type fakeBusinessClient struct {
	business *businessservice.Business
}

func (f *fakeBusinessClient) GetBusiness(_ context.Context, _ int64) (*businessservice.Business, error) {
	return f.business, nil
}

type fakeEvidenceClient struct {
	token string
	err   error
}

func (f *fakeEvidenceClient) RegisterUpload(_ context.Context, _ int64, _ domain.EvidenceKind) (string, error) {
	return f.token, f.err
}

type fakeBillingClient struct {
	err    error
	called int
	got    *domain.Appointment
}

func (f *fakeBillingClient) FinalizeCommission(_ context.Context, apt *domain.Appointment) error {
	f.called++
	f.got = apt
	return f.err
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func inProgressAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:           1,
		BusinessID:   1,
		BranchID:     10,
		SpecialistID: 42,
		Status:       domain.StatusInProgress,
		Services: []domain.AppointmentService{
			{ServiceID: 7, Name: "Стрижка", DurationMinutes: 60, Price: 1500},
			{ServiceID: 8, Name: "Укладка", DurationMinutes: 30, Price: 800},
		},
	}
}

func newTestUseCase(repo *fakeAppointmentRepo, evidence *fakeEvidenceClient, billing *fakeBillingClient) *UseCase {
	return NewUseCase(
		repo,
		&fakeBusinessClient{business: &businessservice.Business{ID: 1, ManagerIDs: []int64{100}}},
		evidence,
		billing,
		fakeTxManager{},
		nopLogger{},
	)
}

func TestExecute_Begin(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	uc := newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

	resp, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionBegin})
	require.NoError(t, err)

	assert.Equal(t, workflow.StepAfterEvidence, resp.NextStep)
	assert.Equal(t, string(domain.StatusInProgress), resp.Status)
}

func TestExecute_AttachAfterEvidence(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	uc := newTestUseCase(repo, &fakeEvidenceClient{token: "upload-token-2"}, &fakeBillingClient{})

	resp, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 1, UserID: 42, Action: ActionAttachAfterEvidence,
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.StepDone, resp.NextStep)
	require.NotNil(t, resp.UploadToken)
	assert.Equal(t, "upload-token-2", *resp.UploadToken)
	require.NotNil(t, repo.evidenceKind)
	assert.Equal(t, domain.EvidenceAfter, *repo.evidenceKind)

	// Загрузка фото ещё не завершает запись
	assert.Nil(t, repo.finalizedTotal)
}

func TestExecute_Finish(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	billing := &fakeBillingClient{}
	uc := newTestUseCase(repo, &fakeEvidenceClient{}, billing)

	resp, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionFinish})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, workflow.StepDone, resp.NextStep)

	// Итоговая сумма - сумма snapshot-цен услуг
	require.NotNil(t, resp.TotalAmount)
	assert.InDelta(t, 2300.0, *resp.TotalAmount, 0.001)
	require.NotNil(t, repo.finalizedTotal)
	assert.InDelta(t, 2300.0, *repo.finalizedTotal, 0.001)

	// Биллинг получает завершённую запись
	assert.Equal(t, 1, billing.called)
	require.NotNil(t, billing.got)
	assert.Equal(t, domain.StatusCompleted, billing.got.Status)
}

func TestExecute_SkipAfterEvidenceFinishes(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	billing := &fakeBillingClient{}
	uc := newTestUseCase(repo, &fakeEvidenceClient{}, billing)

	resp, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 1, UserID: 42, Action: ActionSkipAfterEvidence,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Nil(t, repo.evidenceKind)
	assert.Equal(t, 1, billing.called)
}

func TestExecute_BillingFailureDoesNotUndoCompletion(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	billing := &fakeBillingClient{err: errors.New("billing unavailable")}
	uc := newTestUseCase(repo, &fakeEvidenceClient{}, billing)

	resp, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionFinish})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, domain.StatusCompleted, repo.appointment.Status)
}

func TestExecute_RequiresInProgressStatus(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCanceled,
	} {
		t.Run(string(status), func(t *testing.T) {
			apt := inProgressAppointment()
			apt.Status = status
			repo := &fakeAppointmentRepo{appointment: apt}
			uc := newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

			_, err := uc.Execute(context.Background(), &Request{
				AppointmentID: 1, UserID: 42, Action: ActionBegin,
			})
			assert.ErrorIs(t, err, ErrIllegalState)
		})
	}
}

func TestExecute_AccessControl(t *testing.T) {
	t.Run("manager allowed", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
		uc := newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

		_, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 100, Action: ActionBegin})
		assert.NoError(t, err)
	})

	t.Run("stranger denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
		uc := newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

		_, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 777, Action: ActionBegin})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestExecute_Validation(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: inProgressAppointment()}
	uc := newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

	_, err := uc.Execute(context.Background(), &Request{AppointmentID: 0, UserID: 42, Action: ActionBegin})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: "undo"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	repo = &fakeAppointmentRepo{getErr: storageRepo.ErrAppointmentNotFound}
	uc = newTestUseCase(repo, &fakeEvidenceClient{}, &fakeBillingClient{})

	_, err = uc.Execute(context.Background(), &Request{AppointmentID: 999, UserID: 42, Action: ActionBegin})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
