package repo

import (
	"context"
	"fmt"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// EventRepositoryPG implements domain.EventRepository.
type EventRepositoryPG struct {
	db infra.DB
}

func NewEventRepository(db infra.DB) *EventRepositoryPG {
	return &EventRepositoryPG{db: db}
}

func (r *EventRepositoryPG) Create(ctx context.Context, e domain.Event) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, sqlinline.QInsertEvent,
		e.Title,
		e.Description,
		e.ScheduleStart,
		e.ScheduleEnd,
		e.Venue,
		e.Capacity,
		e.FeeEnabled,
		e.FeeAmount.Paise(),
		e.ImageURL,
		string(e.Status),
		e.CreatedBy,
	)
	return scanEvent(row)
}

func (r *EventRepositoryPG) Update(ctx context.Context, e domain.Event) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, sqlinline.QUpdateEvent,
		e.ID,
		e.Title,
		e.Description,
		e.ScheduleStart,
		e.ScheduleEnd,
		e.Venue,
		e.Capacity,
		e.FeeEnabled,
		e.FeeAmount.Paise(),
		e.ImageURL,
		string(e.Status),
	)
	return scanEvent(row)
}

// Archive hides an event from the default listing without deleting its
// registrations.
func (r *EventRepositoryPG) Archive(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QArchiveEvent, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EventRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return scanEvent(r.db.QueryRow(ctx, sqlinline.QSelectEventByID, id))
}

func (r *EventRepositoryPG) List(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListEvents, string(status))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func (r *EventRepositoryPG) GetRegistration(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	return scanRegistration(r.db.QueryRow(ctx, sqlinline.QSelectRegistration, eventID, userID))
}

func (r *EventRepositoryPG) Register(ctx context.Context, reg domain.EventRegistration) (*domain.EventRegistration, error) {
	err := r.db.InTx(ctx, func(tx infra.SQLExecutor) error {
		event, err := scanEvent(tx.QueryRow(ctx, sqlinline.QSelectEventForUpdate, reg.EventID))
		if err != nil {
			return err
		}
		if event.Status != domain.EventLive {
			return fmt.Errorf("%w: event is not open for registration", domain.ErrConflict)
		}
		if event.Capacity != nil && event.RegisteredCount >= *event.Capacity {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}
		row := tx.QueryRow(ctx, sqlinline.QInsertRegistration,
			reg.EventID,
			reg.UserID,
			reg.PaymentRequired,
			reg.PaymentStatus,
			reg.DonationID,
		)
		if err := row.Scan(&reg.ID, &reg.CreatedAt); err != nil {
			if infra.IsUniqueViolation(err) {
				return fmt.Errorf("%w: already registered", domain.ErrConflict)
			}
			return err
		}
		_, err = tx.Exec(ctx, sqlinline.QIncrementEventRegistered, reg.EventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

var _ domain.EventRepository = (*EventRepositoryPG)(nil)
