package schedulingconfig

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

var configColumns = []string{
	"id",
	"business_id",
	"branch_id",
	"service_id",
	"slot_step_minutes",
	"advance_booking_days",
	"min_notice_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с конфигурацией расписания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации расписания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую конфигурацию расписания
func (r *Repository) Create(ctx context.Context, config *domain.SchedulingConfig) (*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("scheduling_config").
		Columns(
			"business_id",
			"branch_id",
			"service_id",
			"slot_step_minutes",
			"advance_booking_days",
			"min_notice_minutes",
		).
		Values(
			config.BusinessID,
			config.BranchID,
			config.ServiceID,
			config.SlotStepMinutes,
			config.AdvanceBookingDays,
			config.MinNoticeMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateConfig
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// GetByBusinessBranchAndService получает конфигурацию для точной комбинации
// бизнеса, филиала (или NULL) и услуги (или NULL)
func (r *Repository) GetByBusinessBranchAndService(ctx context.Context, businessID int64, branchID *int64, serviceID *int64) (*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("scheduling_config").
		Where(squirrel.Eq{"business_id": businessID})

	if branchID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch_id": *branchID})
	}

	if serviceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessBranchAndService - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanConfig(executor.QueryRowContext(ctx, query, args...), "GetByBusinessBranchAndService")
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация для конкретной услуги в конкретном филиале (branchID, serviceID)
// 2. Конфигурация для всех услуг в конкретном филиале (branchID, NULL)
// 3. Конфигурация для конкретной услуги во всех филиалах (NULL, serviceID)
// 4. Глобальная конфигурация бизнеса (NULL, NULL)
//
// Если конфигурация не найдена ни на одном уровне, возвращает ErrConfigNotFound
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, businessID int64, branchID *int64, serviceID *int64) (*domain.SchedulingConfig, error) {
	if branchID != nil && serviceID != nil {
		config, err := r.GetByBusinessBranchAndService(ctx, businessID, branchID, serviceID)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 1 (branch+service): %v", ErrExecQuery, err)
		}
	}

	if branchID != nil {
		config, err := r.GetByBusinessBranchAndService(ctx, businessID, branchID, nil)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 2 (branch only): %v", ErrExecQuery, err)
		}
	}

	if serviceID != nil {
		config, err := r.GetByBusinessBranchAndService(ctx, businessID, nil, serviceID)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 3 (service only): %v", ErrExecQuery, err)
		}
	}

	config, err := r.GetByBusinessBranchAndService(ctx, businessID, nil, nil)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level 4 (global): %v", ErrExecQuery, err)
	}

	return nil, ErrConfigNotFound
}

// GetAllByBusiness получает все конфигурации бизнеса
func (r *Repository) GetAllByBusiness(ctx context.Context, businessID int64) ([]*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("scheduling_config").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("branch_id NULLS FIRST, service_id NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.SchedulingConfig, 0)
	for rows.Next() {
		var config domain.SchedulingConfig
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&config.ID,
			&config.BusinessID,
			&config.BranchID,
			&config.ServiceID,
			&config.SlotStepMinutes,
			&config.AdvanceBookingDays,
			&config.MinNoticeMinutes,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByBusiness - scan row: %v", ErrScanRow, err)
		}

		config.CreatedAt = createdAt.Time
		config.UpdatedAt = updatedAt.Time
		configs = append(configs, &config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByBusiness - rows error: %v", ErrScanRow, err)
	}

	return configs, nil
}

// Update обновляет параметры конфигурации по ID
func (r *Repository) Update(ctx context.Context, config *domain.SchedulingConfig) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("scheduling_config").
		Set("slot_step_minutes", config.SlotStepMinutes).
		Set("advance_booking_days", config.AdvanceBookingDays).
		Set("min_notice_minutes", config.MinNoticeMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": config.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrConfigNotFound
	}

	return nil
}

func (r *Repository) scanConfig(row *sql.Row, op string) (*domain.SchedulingConfig, error) {
	var config domain.SchedulingConfig
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&config.ID,
		&config.BusinessID,
		&config.BranchID,
		&config.ServiceID,
		&config.SlotStepMinutes,
		&config.AdvanceBookingDays,
		&config.MinNoticeMinutes,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan config: %v", ErrScanRow, op, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
