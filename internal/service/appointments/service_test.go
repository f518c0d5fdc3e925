package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	storageRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/internal/service/appointments/models"
	"github.com/salonmate/SM-AppointmentService/pkg/ptr"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	byClient    []*domain.Appointment
	byFilter    []*domain.Appointment
	getErr      error

	updatedStatus   *domain.AppointmentStatus
	cancelledReason *string
	gotFilter       *domain.SpecialistAppointmentsFilter
	evidenceKind    *domain.EvidenceKind
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	apt := *f.appointment
	return &apt, nil
}

func (f *fakeAppointmentRepo) GetByClientID(_ context.Context, _ int64, _ *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	return f.byClient, nil
}

func (f *fakeAppointmentRepo) GetWithFilter(_ context.Context, filter domain.SpecialistAppointmentsFilter) ([]*domain.Appointment, error) {
	f.gotFilter = &filter
	return f.byFilter, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ int64, status domain.AppointmentStatus) error {
	f.updatedStatus = &status
	return nil
}

func (f *fakeAppointmentRepo) Cancel(_ context.Context, _ int64, reason string) error {
	f.cancelledReason = &reason
	return nil
}

func (f *fakeAppointmentRepo) SetEvidence(_ context.Context, _ int64, kind domain.EvidenceKind, _ bool) error {
	f.evidenceKind = &kind
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

type fakeEvidenceClient struct {
	token string
}

func (f *fakeEvidenceClient) RegisterUpload(_ context.Context, _ int64, _ domain.EvidenceKind) (string, error) {
	return f.token, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBusiness() *businessservice.Business {
	return &businessservice.Business{ID: 1, Timezone: "America/Bogota", ManagerIDs: []int64{100}}
}

// Запись клиента 55 у специалиста 42, 09:00-10:00 по Боготе
func testAppointment(status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:           1,
		BusinessID:   1,
		BranchID:     10,
		SpecialistID: 42,
		ClientID:     ptr.Ptr(int64(55)),
		Status:       status,
		StartAt:      time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		EndAt:        time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
	}
}

func newTestService(repo *fakeAppointmentRepo, biz *fakeBusinessClient) *Service {
	return NewService(repo, biz, &fakeEvidenceClient{token: "token"}, nopLogger{})
}

func TestGetByID(t *testing.T) {
	t.Run("renders local time in business zone", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		resp, err := svc.GetByID(context.Background(), 1, 55)
		require.NoError(t, err)

		assert.Equal(t, "2025-03-10", resp.Date)
		assert.Equal(t, "09:00", resp.StartTime)
		assert.Equal(t, "10:00", resp.EndTime)
		assert.Equal(t, "America/Bogota", resp.Timezone)
		assert.True(t, resp.StartAt.Equal(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)))
	})

	t.Run("falls back to UTC-only view when business is unavailable", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{err: businessservice.ErrInternal})

		// Специалист имеет доступ без проверки менеджера
		resp, err := svc.GetByID(context.Background(), 1, 42)
		require.NoError(t, err)

		assert.Empty(t, resp.Date)
		assert.Empty(t, resp.Timezone)
		assert.False(t, resp.StartAt.IsZero())
	})

	t.Run("access", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		for _, userID := range []int64{55, 42, 100} { // клиент, специалист, менеджер
			_, err := svc.GetByID(context.Background(), 1, userID)
			assert.NoError(t, err, "user %d", userID)
		}

		_, err := svc.GetByID(context.Background(), 1, 777)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeAppointmentRepo{getErr: storageRepo.ErrAppointmentNotFound}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.GetByID(context.Background(), 999, 55)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestGetClientAppointments(t *testing.T) {
	t.Run("client sees only own history", func(t *testing.T) {
		repo := &fakeAppointmentRepo{byClient: []*domain.Appointment{testAppointment(domain.StatusCompleted)}}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		resp, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
			ClientID: 55, UserID: 55,
		})
		require.NoError(t, err)
		require.Len(t, resp.Appointments, 1)
		assert.Equal(t, "09:00", resp.Appointments[0].StartTime)
	})

	t.Run("foreign history denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
			ClientID: 55, UserID: 77,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.GetClientAppointments(context.Background(), &models.GetClientAppointmentsRequest{
			ClientID: 55, UserID: 55, Status: ptr.Ptr("cancelled"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestGetBusinessAppointments(t *testing.T) {
	t.Run("manager only", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			UserID: 55, BusinessID: 1,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("period converts to business zone instants", func(t *testing.T) {
		repo := &fakeAppointmentRepo{byFilter: []*domain.Appointment{testAppointment(domain.StatusConfirmed)}}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		resp, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			UserID:     100,
			BusinessID: 1,
			StartDate:  ptr.Ptr(types.DateString("2025-03-10")),
			EndDate:    ptr.Ptr(types.DateString("2025-03-10")),
		})
		require.NoError(t, err)
		require.Len(t, resp.Appointments, 1)

		require.NotNil(t, repo.gotFilter)
		require.NotNil(t, repo.gotFilter.StartAt)
		// Локальные 00:00 Боготы = 05:00 UTC
		assert.True(t, repo.gotFilter.StartAt.Equal(time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)))
		assert.True(t, repo.gotFilter.EndAt.Equal(time.Date(2025, 3, 11, 4, 59, 0, 0, time.UTC)))
	})

	t.Run("invalid status filter", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.GetBusinessAppointments(context.Background(), &models.GetBusinessAppointmentsRequest{
			UserID: 100, BusinessID: 1, Status: ptr.Ptr("unknown"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("manager confirms pending", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusPending)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Confirm(context.Background(), 1, &models.ConfirmAppointmentRequest{UserID: 100})
		require.NoError(t, err)

		require.NotNil(t, repo.updatedStatus)
		assert.Equal(t, domain.StatusConfirmed, *repo.updatedStatus)
	})

	t.Run("non-manager denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusPending)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		// Даже специалист записи не подтверждает - только менеджер
		err := svc.Confirm(context.Background(), 1, &models.ConfirmAppointmentRequest{UserID: 42})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("already confirmed", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Confirm(context.Background(), 1, &models.ConfirmAppointmentRequest{UserID: 100})
		assert.ErrorIs(t, err, ErrCannotConfirm)
	})
}

func TestCancel(t *testing.T) {
	t.Run("client cancels own appointment", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
			UserID: 55, CancellationReason: "не смогу прийти",
		})
		require.NoError(t, err)

		require.NotNil(t, repo.cancelledReason)
		assert.Equal(t, "не смогу прийти", *repo.cancelledReason)
	})

	t.Run("manager cancels any appointment", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusPending)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
			UserID: 100, CancellationReason: "специалист заболел",
		})
		assert.NoError(t, err)
	})

	t.Run("stranger denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
			UserID: 777, CancellationReason: "reason",
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("reason is required", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusConfirmed)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
			UserID: 55, CancellationReason: "  ",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, repo.cancelledReason)
	})

	t.Run("terminal statuses cannot be cancelled", func(t *testing.T) {
		for _, status := range []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusCanceled} {
			repo := &fakeAppointmentRepo{appointment: testAppointment(status)}
			svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

			err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
				UserID: 55, CancellationReason: "reason",
			})
			assert.ErrorIs(t, err, ErrCannotCancel, "status %s", status)
		}
	})
}

func TestAttachEvidence(t *testing.T) {
	t.Run("specialist attaches before evidence", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusInProgress)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		resp, err := svc.AttachEvidence(context.Background(), 1, &models.AttachEvidenceRequest{
			UserID: 42, Kind: "before",
		})
		require.NoError(t, err)

		assert.Equal(t, "before", resp.Kind)
		assert.Equal(t, "token", resp.UploadToken)
		require.NotNil(t, repo.evidenceKind)
		assert.Equal(t, domain.EvidenceBefore, *repo.evidenceKind)
	})

	t.Run("invalid kind", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusInProgress)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.AttachEvidence(context.Background(), 1, &models.AttachEvidenceRequest{
			UserID: 42, Kind: "during",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("client denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusInProgress)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.AttachEvidence(context.Background(), 1, &models.AttachEvidenceRequest{
			UserID: 55, Kind: "before",
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("terminal appointment rejected", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: testAppointment(domain.StatusCompleted)}
		svc := newTestService(repo, &fakeBusinessClient{business: testBusiness()})

		_, err := svc.AttachEvidence(context.Background(), 1, &models.AttachEvidenceRequest{
			UserID: 42, Kind: "after",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
