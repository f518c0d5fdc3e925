package start_appointment

import (
	"context"
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

	updatedStatus *domain.AppointmentStatus
	consentSigned *bool
	evidenceKind  *domain.EvidenceKind
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	apt := *f.appointment
	return &apt, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ int64, status domain.AppointmentStatus) error {
	f.updatedStatus = &status
	f.appointment.Status = status
	return nil
}

func (f *fakeAppointmentRepo) SetConsentSigned(_ context.Context, _ int64, signed bool) error {
	f.consentSigned = &signed
	f.appointment.HasSignedConsent = signed
	return nil
}

func (f *fakeAppointmentRepo) SetEvidence(_ context.Context, _ int64, kind domain.EvidenceKind, present bool) error {
	f.evidenceKind = &kind
	if kind == domain.EvidenceBefore {
		f.appointment.HasBeforeEvidence = present
	} else {
		f.appointment.HasAfterEvidence = present
	}
	return nil
}

type fakeBusinessClient struct {
	business *businessservice.Business
	err      error
}

func (f *fakeBusinessClient) GetBusiness(_ context.Context, _ int64) (*businessservice.Business, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.business, nil
}

type fakeConsentClient struct {
	signed    bool
	signedErr error
	submitted [][]byte
	submitErr error
}

func (f *fakeConsentClient) HasSignedConsent(_ context.Context, _ int64) (bool, error) {
	return f.signed, f.signedErr
}

func (f *fakeConsentClient) SubmitSignature(_ context.Context, _ int64, signature []byte) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, signature)
	return nil
}

type fakeEvidenceClient struct {
	token string
	err   error
}

func (f *fakeEvidenceClient) RegisterUpload(_ context.Context, _ int64, _ domain.EvidenceKind) (string, error) {
	return f.token, f.err
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func confirmedAppointment(requiresConsent bool) *domain.Appointment {
	return &domain.Appointment{
		ID:              1,
		BusinessID:      1,
		BranchID:        10,
		SpecialistID:    42,
		Status:          domain.StatusConfirmed,
		RequiresConsent: requiresConsent,
	}
}

func testBusiness() *businessservice.Business {
	return &businessservice.Business{ID: 1, Timezone: "America/Bogota", ManagerIDs: []int64{100}}
}

func newTestUseCase(repo *fakeAppointmentRepo, consent *fakeConsentClient, evidence *fakeEvidenceClient) *UseCase {
	return NewUseCase(
		repo,
		&fakeBusinessClient{business: testBusiness()},
		consent,
		evidence,
		fakeTxManager{},
		nopLogger{},
	)
}

func TestExecute_Begin(t *testing.T) {
	t.Run("consent required first", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(true)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		resp, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionBegin})
		require.NoError(t, err)
		assert.Equal(t, workflow.StepConsent, resp.NextStep)
	})

	t.Run("no consent goes straight to before evidence", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		resp, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionBegin})
		require.NoError(t, err)
		assert.Equal(t, workflow.StepBeforeEvidence, resp.NextStep)
	})
}

func TestExecute_SignConsent(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: confirmedAppointment(true)}
	consent := &fakeConsentClient{}
	uc := newTestUseCase(repo, consent, &fakeEvidenceClient{})

	resp, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 1,
		UserID:        42,
		Action:        ActionSignConsent,
		Signature:     []byte("signature-image"),
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.StepBeforeEvidence, resp.NextStep)
	require.Len(t, consent.submitted, 1)
	require.NotNil(t, repo.consentSigned)
	assert.True(t, *repo.consentSigned)

	t.Run("signature required", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionSignConsent,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("not applicable without consent requirement", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		_, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionSignConsent, Signature: []byte("x"),
		})
		assert.ErrorIs(t, err, ErrIllegalState)
	})
}

func TestExecute_AttachBeforeEvidence(t *testing.T) {
	t.Run("registers upload and advances", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{token: "upload-token-1"})

		resp, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionAttachBeforeEvidence,
		})
		require.NoError(t, err)

		assert.Equal(t, workflow.StepConfirmStart, resp.NextStep)
		require.NotNil(t, resp.UploadToken)
		assert.Equal(t, "upload-token-1", *resp.UploadToken)
		require.NotNil(t, repo.evidenceKind)
		assert.Equal(t, domain.EvidenceBefore, *repo.evidenceKind)
	})

	t.Run("blocked until consent signed", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(true)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{token: "t"})

		_, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionAttachBeforeEvidence,
		})
		assert.ErrorIs(t, err, ErrConsentNotSigned)
	})
}

func TestExecute_SkipBeforeEvidence(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
	uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

	resp, err := uc.Execute(context.Background(), &Request{
		AppointmentID: 1, UserID: 42, Action: ActionSkipBeforeEvidence,
	})
	require.NoError(t, err)

	// Пропуск ведёт к тому же шагу, что и загрузка, без побочных эффектов
	assert.Equal(t, workflow.StepConfirmStart, resp.NextStep)
	assert.Nil(t, repo.evidenceKind)
	assert.Nil(t, resp.UploadToken)
}

func TestExecute_ConfirmStart(t *testing.T) {
	t.Run("transitions to in_progress", func(t *testing.T) {
		apt := confirmedAppointment(true)
		apt.HasSignedConsent = true
		repo := &fakeAppointmentRepo{appointment: apt}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		resp, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionConfirmStart,
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.StatusInProgress), resp.Status)
		assert.Equal(t, workflow.StepDone, resp.NextStep)
		require.NotNil(t, repo.updatedStatus)
		assert.Equal(t, domain.StatusInProgress, *repo.updatedStatus)
	})

	t.Run("blocked by unsigned consent", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(true)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		_, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionConfirmStart,
		})
		assert.ErrorIs(t, err, ErrConsentNotSigned)
		assert.Nil(t, repo.updatedStatus)
	})

	t.Run("consent service state is re-checked inside transaction", func(t *testing.T) {
		// Подпись пришла в consent-сервис напрямую, локальный гейт ещё не обновлён
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(true)}
		consent := &fakeConsentClient{signed: true}
		uc := newTestUseCase(repo, consent, &fakeEvidenceClient{})

		resp, err := uc.Execute(context.Background(), &Request{
			AppointmentID: 1, UserID: 42, Action: ActionConfirmStart,
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.StatusInProgress), resp.Status)
		require.NotNil(t, repo.consentSigned)
		assert.True(t, *repo.consentSigned)
	})
}

func TestExecute_RequiresConfirmedStatus(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.StatusPending,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCanceled,
	} {
		t.Run(string(status), func(t *testing.T) {
			apt := confirmedAppointment(false)
			apt.Status = status
			repo := &fakeAppointmentRepo{appointment: apt}
			uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

			_, err := uc.Execute(context.Background(), &Request{
				AppointmentID: 1, UserID: 42, Action: ActionBegin,
			})
			assert.ErrorIs(t, err, ErrIllegalState)
		})
	}
}

func TestExecute_AccessControl(t *testing.T) {
	t.Run("specialist allowed", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		_, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: ActionBegin})
		assert.NoError(t, err)
	})

	t.Run("manager allowed", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		_, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 100, Action: ActionBegin})
		assert.NoError(t, err)
	})

	t.Run("client denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
		uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

		_, err := uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 777, Action: ActionBegin})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestExecute_NotFoundAndUnknownAction(t *testing.T) {
	repo := &fakeAppointmentRepo{getErr: storageRepo.ErrAppointmentNotFound}
	uc := newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

	_, err := uc.Execute(context.Background(), &Request{AppointmentID: 999, UserID: 42, Action: ActionBegin})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	repo = &fakeAppointmentRepo{appointment: confirmedAppointment(false)}
	uc = newTestUseCase(repo, &fakeConsentClient{}, &fakeEvidenceClient{})

	_, err = uc.Execute(context.Background(), &Request{AppointmentID: 1, UserID: 42, Action: "rewind"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
