package repository

import (
	"context"

	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

func (r *PGEventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, venue, starts_at, discount_budget, discount_spent, created_at, updated_at FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Venue, &e.StartsAt, &e.DiscountBudget, &e.DiscountSpent, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, venue, starts_at, discount_budget, discount_spent, created_at, updated_at FROM events WHERE id=$1`, id)
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Venue, &e.StartsAt, &e.DiscountBudget, &e.DiscountSpent, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *PGEventRepository) GetPass(ctx context.Context, id string) (*domain.Pass, error) {
	row := r.db.QueryRow(ctx, `SELECT id, event_id, name, unit_price, capacity, sold FROM passes WHERE id=$1`, id)
	var p domain.Pass
	if err := row.Scan(&p.ID, &p.EventID, &p.Name, &p.UnitPrice, &p.Capacity, &p.Sold); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PGEventRepository) ListPasses(ctx context.Context, eventID string) ([]domain.Pass, error) {
	rows, err := r.db.Query(ctx, `SELECT id, event_id, name, unit_price, capacity, sold FROM passes WHERE event_id=$1 ORDER BY unit_price`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := make([]domain.Pass, 0)
	for rows.Next() {
		var p domain.Pass
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.UnitPrice, &p.Capacity, &p.Sold); err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

var _ EventRepository = (*PGEventRepository)(nil)
