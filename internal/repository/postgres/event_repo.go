package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"eventsapi/internal/domain"
)

const (
	eventsTable = "events"
	colID       = "id"
	colDeleted  = "deleted"
)

var eventColumns = []any{colID, "title", "datetime", "location", colDeleted}

// dbtx is the subset of *sql.DB and *sql.Tx the repository needs.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type eventRepository struct {
	DB *sql.DB
	q  dbtx
	tx *sql.Tx
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
		q:  db,
	}
}

func (r *eventRepository) Save(ctx context.Context, e *domain.Event) error {
	if e.ID == 0 {
		query := `
			INSERT INTO events (title, datetime, location, deleted)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		return r.q.QueryRowContext(ctx, query, e.Title, e.DateTime, e.Location, e.Deleted).Scan(&e.ID)
	}
	query := `
		UPDATE events SET title = $1, datetime = $2, location = $3, deleted = $4
		WHERE id = $5
	`
	result, err := r.q.ExecContext(ctx, query, e.Title, e.DateTime, e.Location, e.Deleted, e.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) FindAllActive(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT id, title, datetime, location, deleted
		FROM events
		WHERE deleted = FALSE
		ORDER BY id
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) FindActivePage(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	params = params.Normalize()
	active := goqu.Dialect("postgres").From(eventsTable).Where(goqu.C(colDeleted).IsFalse())

	countQuery, _, err := active.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.q.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery, _, err := active.
		Select(eventColumns...).
		Order(orderBy(params.Sort)...).
		Limit(uint(params.PageSize)).
		Offset(uint(params.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build page query: %w", err)
	}
	rows, err := r.q.QueryContext(ctx, pageQuery)
	if err != nil {
		return nil, 0, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// orderBy turns a SortOrder into ORDER BY terms, always ending with id so pages are stable.
func orderBy(s domain.SortOrder) []exp.OrderedExpression {
	field := s.Field
	primary := goqu.I(field).Asc()
	if s.Desc {
		primary = goqu.I(field).Desc()
	}
	if field == domain.SortByID {
		return []exp.OrderedExpression{primary}
	}
	return []exp.OrderedExpression{primary, goqu.I(colID).Asc()}
}

func (r *eventRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT id, title, datetime, location, deleted
		FROM events
		WHERE id = $1 AND deleted = FALSE
	`
	e := &domain.Event{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Title, &e.DateTime, &e.Location, &e.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) WithTx(ctx context.Context, fn func(repo domain.EventRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txRepo := &eventRepository{DB: r.DB, q: tx, tx: tx}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.DateTime, &e.Location, &e.Deleted); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
