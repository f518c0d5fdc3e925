package create_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	storageRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/pkg/ptr"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

type fakeAppointmentRepo struct {
	existing  []*domain.Appointment
	createErr error
	created   *domain.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *apt
	out.ID = 1001
	out.CreatedAt = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	out.UpdatedAt = out.CreatedAt
	f.created = &out
	return &out, nil
}

func (f *fakeAppointmentRepo) GetWithFilter(_ context.Context, _ domain.SpecialistAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.existing, nil
}

type fakeConfigRepo struct {
	config *domain.SchedulingConfig
	err    error
}

func (f *fakeConfigRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64, _ *int64) (*domain.SchedulingConfig, error) {
	return f.config, f.err
}

type fakeBusinessClient struct {
	business *businessservice.Business
	services map[int64]*businessservice.Service
	err      error
}

func (f *fakeBusinessClient) GetBusiness(_ context.Context, _ int64) (*businessservice.Business, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.business, nil
}

func (f *fakeBusinessClient) GetService(_ context.Context, _ int64, serviceID int64) (*businessservice.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok {
		return nil, businessservice.ErrServiceNotFound
	}
	return svc, nil
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func workingDay(open, close string) businessservice.DaySchedule {
	return businessservice.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close}
}

func testBusiness() *businessservice.Business {
	return &businessservice.Business{
		ID:         1,
		Name:       "Клиника",
		Timezone:   "America/Bogota",
		ManagerIDs: []int64{100},
		Branches: []businessservice.Branch{
			{
				ID:   10,
				Name: "Центральный",
				WorkingHours: businessservice.WeekSchedule{
					Monday:  workingDay("09:00", "18:00"),
					Tuesday: workingDay("09:00", "18:00"),
				},
			},
		},
	}
}

func testServices() map[int64]*businessservice.Service {
	return map[int64]*businessservice.Service{
		7: {ID: 7, BusinessID: 1, Name: "Стрижка", DurationMinutes: 60,
			Price: ptr.Ptr(1500.0), BranchIDs: []int64{10}},
		8: {ID: 8, BusinessID: 1, Name: "Чистка лица", DurationMinutes: 30,
			Price: ptr.Ptr(2000.0), RequiresConsent: true, BranchIDs: []int64{10}},
	}
}

func newTestUseCase(repo *fakeAppointmentRepo, cfg *fakeConfigRepo, biz *fakeBusinessClient, now time.Time) *UseCase {
	uc := NewUseCase(repo, cfg, biz, fakeTxManager{}, nopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func validRequest() *Request {
	return &Request{
		UserID:       55,
		BusinessID:   1,
		BranchID:     10,
		SpecialistID: 42,
		ClientID:     ptr.Ptr(int64(55)),
		ServiceIDs:   []int64{7},
		Date:         types.DateString("2025-03-10"), // понедельник
		StartTime:    types.TimeString("09:00"),
	}
}

func defaultNow() time.Time {
	return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
}

func TestExecute_CreatesPendingAppointmentWithSnapshot(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{SlotStepMinutes: 30, MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
	uc := newTestUseCase(repo, cfg, biz, defaultNow())

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1001), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)

	// 09:00 в Боготе (UTC-5) = 14:00 UTC
	assert.True(t, resp.StartAt.Equal(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)))
	assert.True(t, resp.EndAt.Equal(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)))

	// Локальное представление воспроизводит запрошенные дату и время
	assert.Equal(t, types.DateString("2025-03-10"), resp.Date)
	assert.Equal(t, types.TimeString("09:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("10:00"), resp.EndTime)
	assert.Equal(t, "America/Bogota", resp.Timezone)

	// Snapshot услуги зафиксирован
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Стрижка", resp.Services[0].Name)
	assert.Equal(t, 60, resp.Services[0].DurationMinutes)
	assert.InDelta(t, 1500.0, resp.Services[0].Price, 0.001)
	assert.InDelta(t, 1500.0, resp.TotalAmount, 0.001)
	assert.False(t, resp.RequiresConsent)
}

func TestExecute_ConsentRequiredWhenAnyServiceRequiresIt(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
	uc := newTestUseCase(repo, cfg, biz, defaultNow())

	req := validRequest()
	req.ServiceIDs = []int64{7, 8}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.RequiresConsent)
	assert.InDelta(t, 3500.0, resp.TotalAmount, 0.001)
	// Суммарная длительность 90 минут
	assert.True(t, resp.EndAt.Equal(resp.StartAt.Add(90*time.Minute)))
}

func TestExecute_StaffBookingIsConfirmedImmediately(t *testing.T) {
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}

	t.Run("manager booking", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		req := validRequest()
		req.UserID = 100 // менеджер бизнеса
		req.CreatedByStaff = true
		req.ClientID = nil
		req.ClientName = ptr.Ptr("Анна")
		req.ClientPhone = ptr.Ptr("+57 300 123 4567")

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	})

	t.Run("staff flag without manager role is ignored", func(t *testing.T) {
		repo := &fakeAppointmentRepo{}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		req := validRequest()
		req.CreatedByStaff = true // UserID 55 не менеджер

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusPending), resp.Status)
	})
}

func TestExecute_SlotConflicts(t *testing.T) {
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}

	t.Run("overlap with active appointment", func(t *testing.T) {
		repo := &fakeAppointmentRepo{
			existing: []*domain.Appointment{
				{
					SpecialistID: 42,
					Status:       domain.StatusConfirmed,
					StartAt:      time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
					EndAt:        time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
				},
			},
		}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("canceled appointment does not block", func(t *testing.T) {
		repo := &fakeAppointmentRepo{
			existing: []*domain.Appointment{
				{
					SpecialistID: 42,
					Status:       domain.StatusCanceled,
					StartAt:      time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
					EndAt:        time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
				},
			},
		}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		_, err := uc.Execute(context.Background(), validRequest())
		assert.NoError(t, err)
	})

	t.Run("db constraint violation maps to slot not available", func(t *testing.T) {
		// Конкурентная запись проскочила проверку - сработал exclusion constraint
		repo := &fakeAppointmentRepo{createErr: storageRepo.ErrSlotTaken}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})
}

func TestExecute_ScheduleValidation(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
	uc := newTestUseCase(repo, cfg, biz, defaultNow())

	t.Run("closed day", func(t *testing.T) {
		req := validRequest()
		req.Date = types.DateString("2025-03-16") // воскресенье

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrBranchClosed)
	})

	t.Run("before opening", func(t *testing.T) {
		req := validRequest()
		req.StartTime = types.TimeString("08:30")

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("does not fit before closing", func(t *testing.T) {
		req := validRequest()
		req.StartTime = types.TimeString("17:30") // часовая услуга до 18:30

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	})

	t.Run("ends exactly at closing", func(t *testing.T) {
		req := validRequest()
		req.StartTime = types.TimeString("17:00")

		_, err := uc.Execute(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("past date", func(t *testing.T) {
		req := validRequest()
		req.Date = types.DateString("2025-03-08")

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("too far in the future", func(t *testing.T) {
		limited := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60, AdvanceBookingDays: 7}}
		ucLimited := newTestUseCase(repo, limited, biz, defaultNow())

		req := validRequest()
		req.Date = types.DateString("2025-03-24")

		_, err := ucLimited.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})
}

func TestExecute_MinNotice(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 120}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}

	// Сейчас 08:00 локального времени дня записи: до 09:00 меньше двух часов
	now := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	uc := newTestUseCase(repo, cfg, biz, now)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrTooLateToBook)

	// Запись на 11:00 проходит
	req := validRequest()
	req.StartTime = types.TimeString("11:00")
	_, err = uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_InputValidation(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}
	biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
	uc := newTestUseCase(repo, cfg, biz, defaultNow())

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"zero business", func(r *Request) { r.BusinessID = 0 }, ErrInvalidInput},
		{"zero specialist", func(r *Request) { r.SpecialistID = 0 }, ErrInvalidInput},
		{"no services", func(r *Request) { r.ServiceIDs = nil }, ErrInvalidInput},
		{"no client info", func(r *Request) {
			r.ClientID = nil
		}, ErrInvalidInput},
		{"client name without phone", func(r *Request) {
			r.ClientID = nil
			r.ClientName = ptr.Ptr("Анна")
		}, ErrInvalidInput},
		{"blank client name", func(r *Request) {
			r.ClientID = nil
			r.ClientName = ptr.Ptr("   ")
			r.ClientPhone = ptr.Ptr("+57 300 123 4567")
		}, ErrInvalidInput},
		{"empty date", func(r *Request) { r.Date = "" }, ErrInvalidInput},
		{"bad time", func(r *Request) { r.StartTime = "9am" }, ErrInvalidInput},
		{"too many services", func(r *Request) {
			r.ServiceIDs = make([]int64, domain.MaxServicesPerAppointment+1)
			for i := range r.ServiceIDs {
				r.ServiceIDs[i] = int64(i + 1)
			}
		}, ErrInvalidInput},
		{"notes too long", func(r *Request) {
			long := make([]byte, domain.MaxNotesLength+1)
			for i := range long {
				long[i] = 'a'
			}
			r.Notes = ptr.Ptr(string(long))
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_NotFoundErrors(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	cfg := &fakeConfigRepo{config: &domain.SchedulingConfig{MinNoticeMinutes: 60}}

	t.Run("business not found", func(t *testing.T) {
		biz := &fakeBusinessClient{err: businessservice.ErrBusinessNotFound}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrBusinessNotFound)
	})

	t.Run("branch not found", func(t *testing.T) {
		biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		req := validRequest()
		req.BranchID = 999

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrBranchNotFound)
	})

	t.Run("service not found", func(t *testing.T) {
		biz := &fakeBusinessClient{business: testBusiness(), services: testServices()}
		uc := newTestUseCase(repo, cfg, biz, defaultNow())

		req := validRequest()
		req.ServiceIDs = []int64{999}

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}
