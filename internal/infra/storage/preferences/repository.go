package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/psqlbuilder"
)

const tableName = "preferences"

// Repository хранилище пользовательских предпочтений
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает предпочтения контакта
// Если записи нет, возвращаются пустые заметки (запись создается лениво при первой записи)
func (r *Repository) Get(ctx context.Context, contact string) (*domain.UserPreferences, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("contact", "notes").
		From(tableName).
		Where(squirrel.Eq{"contact": contact}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	prefs := &domain.UserPreferences{}
	err = executor.QueryRowContext(ctx, query, args...).Scan(&prefs.Contact, &prefs.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.UserPreferences{Contact: contact}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan preferences: %w", ErrScanRow, err)
	}

	return prefs, nil
}

// Append дописывает заметку к существующим одним запросом
// Старые заметки не перезаписываются, разделитель "; "
func (r *Repository) Append(ctx context.Context, contact, addition string) error {
	if addition == "" {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("contact", "notes").
		Values(contact, addition).
		Suffix("ON CONFLICT (contact) DO UPDATE SET notes = CASE WHEN preferences.notes = '' " +
			"THEN EXCLUDED.notes ELSE preferences.notes || '" + domain.PreferencesSeparator + "' || EXCLUDED.notes END, " +
			"updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute upsert: %w", ErrExecQuery, err)
	}
	return nil
}
