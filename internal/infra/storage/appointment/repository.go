package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/dbmetrics"
	"github.com/salonmate/SM-AppointmentService/pkg/psqlbuilder"
)

// Колонки таблицы appointments в порядке сканирования
var appointmentColumns = []string{
	"id",
	"business_id",
	"branch_id",
	"specialist_id",
	"client_id",
	"client_name",
	"client_phone",
	"start_at",
	"end_at",
	"status",
	"requires_consent",
	"has_signed_consent",
	"has_before_evidence",
	"has_after_evidence",
	"notes",
	"total_amount",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями
// Авторитетный запрет двойного бронирования обеспечивает exclusion constraint в БД
// (EXCLUDE USING gist по specialist_id и tstzrange(start_at, end_at));
// вычисление слотов в usecase - только вспомогательная проверка
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись вместе со snapshot услуг
// Вызывается внутри сериализуемой транзакции (см. usecase create_appointment),
// чтобы проверка пересечений и вставка были атомарны
func (r *Repository) Create(ctx context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"business_id",
			"branch_id",
			"specialist_id",
			"client_id",
			"client_name",
			"client_phone",
			"start_at",
			"end_at",
			"status",
			"requires_consent",
			"notes",
			"total_amount",
		).
		Values(
			apt.BusinessID,
			apt.BranchID,
			apt.SpecialistID,
			apt.ClientID,
			apt.ClientName,
			apt.ClientPhone,
			apt.StartAt,
			apt.EndAt,
			apt.Status,
			apt.RequiresConsent,
			apt.Notes,
			apt.TotalAmount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&apt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isOverlapViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	apt.CreatedAt = createdAt.Time
	apt.UpdatedAt = updatedAt.Time

	if err := r.insertServices(ctx, executor, apt.ID, apt.Services); err != nil {
		return nil, err
	}

	return apt, nil
}

// insertServices сохраняет snapshot услуг записи
func (r *Repository) insertServices(ctx context.Context, executor DBExecutor, appointmentID int64, services []domain.AppointmentService) error {
	if len(services) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("appointment_services").
		Columns("appointment_id", "service_id", "name", "duration_minutes", "price")

	for _, s := range services {
		insertBuilder = insertBuilder.Values(appointmentID, s.ServiceID, s.Name, s.DurationMinutes, s.Price)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertServices - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertServices - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает запись по ID вместе со snapshot услуг
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции читаем с блокировкой: переход статуса должен
	// опираться на свежее состояние, а не на прочитанное ранее
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	apt, err := r.scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if err := r.loadServices(ctx, executor, []*domain.Appointment{apt}); err != nil {
		return nil, err
	}

	return apt, nil
}

// GetByClientID получает список записей клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("start_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(ctx, executor, rows)
}

// GetWithFilter получает записи бизнеса с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - Филиалу (BranchID) - опционально
// - Специалисту (SpecialistID) - опционально
// - Периоду в UTC (StartAt, EndAt) - опционально
// - Статусу (Status) - опционально
// - Включению неактивных записей (IncludeInactive)
//
// Внутри транзакции с фильтром по специалисту и периоду добавляет FOR UPDATE -
// так usecase создания записи блокирует конкурирующие вставки на тот же интервал
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.SpecialistAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if filter.BranchID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}

	if filter.SpecialistID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"specialist_id": *filter.SpecialistID})
	}

	// Пересечение интервала записи с периодом фильтра: start_at < EndAt AND end_at > StartAt
	if filter.EndAt != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": *filter.EndAt})
	}
	if filter.StartAt != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_at": *filter.StartAt})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) && filter.SpecialistID != nil && filter.StartAt != nil && filter.EndAt != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(ctx, executor, rows)
}

// UpdateStatus обновляет статус записи
// Новый статус обязан быть вычислен через internal/lifecycle
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "UpdateStatus")
}

// Cancel отменяет запись с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCanceled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Cancel")
}

// SetConsentSigned фиксирует подписание информированного согласия
func (r *Repository) SetConsentSigned(ctx context.Context, id int64, signed bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("has_signed_consent", signed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetConsentSigned - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetConsentSigned")
}

// SetEvidence фиксирует наличие фотофиксации указанного вида
func (r *Repository) SetEvidence(ctx context.Context, id int64, kind domain.EvidenceKind, present bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	column := "has_before_evidence"
	if kind == domain.EvidenceAfter {
		column = "has_after_evidence"
	}

	query, args, err := psqlbuilder.Update("appointments").
		Set(column, present).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetEvidence - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetEvidence")
}

// FinalizeCompletion переводит запись в completed и фиксирует итоговую сумму
// После этого сумма и snapshot услуг неизменяемы
func (r *Repository) FinalizeCompletion(ctx context.Context, id int64, totalAmount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCompleted).
		Set("total_amount", totalAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: FinalizeCompletion - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "FinalizeCompletion")
}

// execExpectingRow выполняет update и проверяет, что строка была затронута
func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// scanAppointment сканирует одну запись из *sql.Row
func (r *Repository) scanAppointment(row *sql.Row) (*domain.Appointment, error) {
	var apt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&apt.ID,
		&apt.BusinessID,
		&apt.BranchID,
		&apt.SpecialistID,
		&apt.ClientID,
		&apt.ClientName,
		&apt.ClientPhone,
		&apt.StartAt,
		&apt.EndAt,
		&apt.Status,
		&apt.RequiresConsent,
		&apt.HasSignedConsent,
		&apt.HasBeforeEvidence,
		&apt.HasAfterEvidence,
		&apt.Notes,
		&apt.TotalAmount,
		&apt.CancellationReason,
		&apt.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanAppointment - scan row: %v", ErrScanRow, err)
	}

	apt.CreatedAt = createdAt.Time
	apt.UpdatedAt = updatedAt.Time

	return &apt, nil
}

// scanAppointments сканирует результаты запроса и догружает snapshot услуг
func (r *Repository) scanAppointments(ctx context.Context, executor DBExecutor, rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var apt domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&apt.ID,
			&apt.BusinessID,
			&apt.BranchID,
			&apt.SpecialistID,
			&apt.ClientID,
			&apt.ClientName,
			&apt.ClientPhone,
			&apt.StartAt,
			&apt.EndAt,
			&apt.Status,
			&apt.RequiresConsent,
			&apt.HasSignedConsent,
			&apt.HasBeforeEvidence,
			&apt.HasAfterEvidence,
			&apt.Notes,
			&apt.TotalAmount,
			&apt.CancellationReason,
			&apt.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}

		apt.CreatedAt = createdAt.Time
		apt.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &apt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	if err := r.loadServices(ctx, executor, appointments); err != nil {
		return nil, err
	}

	return appointments, nil
}

// loadServices загружает snapshot услуг для набора записей одним запросом
func (r *Repository) loadServices(ctx context.Context, executor DBExecutor, appointments []*domain.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	ids := make([]int64, len(appointments))
	byID := make(map[int64]*domain.Appointment, len(appointments))
	for i, apt := range appointments {
		ids[i] = apt.ID
		byID[apt.ID] = apt
		apt.Services = nil
	}

	query, args, err := psqlbuilder.Select(
		"appointment_id",
		"service_id",
		"name",
		"duration_minutes",
		"price",
	).
		From("appointment_services").
		Where(squirrel.Eq{"appointment_id": ids}).
		OrderBy("appointment_id ASC, service_id ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var appointmentID int64
		var svc domain.AppointmentService

		if err := rows.Scan(&appointmentID, &svc.ServiceID, &svc.Name, &svc.DurationMinutes, &svc.Price); err != nil {
			return fmt.Errorf("%w: loadServices - scan row: %v", ErrScanRow, err)
		}

		if apt, ok := byID[appointmentID]; ok {
			apt.Services = append(apt.Services, svc)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadServices - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// isOverlapViolation возвращает true для нарушений exclusion/unique constraint
func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23P01 - exclusion_violation, 23505 - unique_violation
		return pqErr.Code == "23P01" || pqErr.Code == "23505"
	}
	return false
}
