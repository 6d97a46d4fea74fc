package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/roadrunner/booking-backend/internal/models"
)

// ParcelTx is the set of parcel operations available inside one transaction
type ParcelTx interface {
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
	Insert(ctx context.Context, parcel *models.Parcel) error
}

// ParcelRepository handles parcel database operations
type ParcelRepository struct {
	db DB
}

// NewParcelRepository creates a new ParcelRepository
func NewParcelRepository(db DB) *ParcelRepository {
	return &ParcelRepository{db: db}
}

const parcelColumns = `id, tracking_number, sender_id, sender_name, sender_phone,
	receiver_name, receiver_phone, receiver_address, route_id, weight_kg, parcel_type,
	delivery_cost, travel_date, status, payment_status, created_at, updated_at`

// WithTx runs fn inside a single transaction
func (r *ParcelRepository) WithTx(ctx context.Context, fn func(tx ParcelTx) error) error {
	return inTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		return fn(&parcelTx{tx: tx})
	})
}

type parcelTx struct {
	tx *sqlx.Tx
}

func (t *parcelTx) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM parcels WHERE tracking_number = $1)`, trackingNumber)
	if err != nil {
		return false, fmt.Errorf("failed to check tracking number uniqueness: %w", err)
	}
	return exists, nil
}

func (t *parcelTx) Insert(ctx context.Context, p *models.Parcel) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO parcels (
			id, tracking_number, sender_id, sender_name, sender_phone,
			receiver_name, receiver_phone, receiver_address, route_id, weight_kg,
			parcel_type, delivery_cost, travel_date, status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err := t.tx.QueryRowxContext(ctx, query,
		p.ID, p.TrackingNumber, p.SenderID, p.SenderName, p.SenderPhone,
		p.ReceiverName, p.ReceiverPhone, p.ReceiverAddress, p.RouteID, p.WeightKg,
		p.ParcelType, p.DeliveryCost, dateArg(p.TravelDate), p.Status, p.PaymentStatus,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert parcel: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a parcel by ID
func (r *ParcelRepository) GetByID(ctx context.Context, id string) (*models.Parcel, error) {
	parcel := &models.Parcel{}
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = $1`

	if err := r.db.GetContext(ctx, parcel, query, id); err != nil {
		return nil, fmt.Errorf("failed to get parcel: %w", mapError(err))
	}
	return parcel, nil
}

// GetTracking returns the public tracking view of a parcel
func (r *ParcelRepository) GetTracking(ctx context.Context, trackingNumber string) (*models.ParcelTracking, error) {
	tracking := &models.ParcelTracking{}
	query := `
		SELECT p.tracking_number, p.status, r.origin, r.destination, p.travel_date
		FROM parcels p
		JOIN routes r ON r.id = p.route_id
		WHERE p.tracking_number = $1
	`

	if err := r.db.GetContext(ctx, tracking, query, trackingNumber); err != nil {
		return nil, fmt.Errorf("failed to track parcel: %w", mapError(err))
	}
	return tracking, nil
}

// ListBySender returns the parcels a user has sent, newest first
func (r *ParcelRepository) ListBySender(ctx context.Context, senderID string) ([]models.Parcel, error) {
	parcels := []models.Parcel{}
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE sender_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &parcels, query, senderID); err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return parcels, nil
}

// UpdateStatus moves a parcel to status "to" only if it is currently "from"
func (r *ParcelRepository) UpdateStatus(ctx context.Context, id string, from, to models.ParcelStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE parcels SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update parcel status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStatusChanged
	}
	return nil
}
