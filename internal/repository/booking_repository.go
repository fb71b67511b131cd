package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

type BookingRepository struct {
	db DBConn
}

func NewBookingRepository(db DBConn) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking reserves a seat on the course date, inserts the booking and one
// row per booked extra unit in a single transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = r.reserveSeatTx(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	err = r.createBookingTx(ctx, tx, booking)
	if err != nil {
		return nil, fmt.Errorf("inserting booking: %w", err)
	}

	for i := range booking.Extras {
		line := &booking.Extras[i]
		line.BookingID = booking.ID
		line.CreatedAt = booking.CreatedAt
		if err := r.createExtraLineTx(ctx, tx, line); err != nil {
			return nil, fmt.Errorf("inserting extra %s: %w", line.ExtraID, err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `
        SELECT ` + bookingColumns + `
        FROM bookings B
        WHERE B.id = $1
    `
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `
        SELECT ` + bookingColumns + `
        FROM bookings B
        WHERE B.user_id = $1
        ORDER BY B.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) GetRegistrantsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Registrant, string, error) {
	query := `
        SELECT ` + bookingColumns + `,
            COALESCE(D.first_name, ''), COALESCE(D.last_name, ''),
            COALESCE(D.email, ''), COALESCE(D.phone, '')
        FROM bookings B
        LEFT JOIN booking_details D ON D.booking_id = B.id
    `
	var args []interface{}
	var conditions []string

	if afterCursor != "" {
		afterTime, afterUUID, err := utils.DecodeCursor(afterCursor)
		if err != nil {
			return nil, "", err
		}
		conditions = append(conditions, "(B.created_at, B.id) > ($1, $2)")
		args = append(args, afterTime, afterUUID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY B.created_at, B.id"
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var registrants []models.Registrant
	for rows.Next() {
		var reg models.Registrant
		b := &reg.Booking
		err := rows.Scan(
			&b.ID, &b.UserID, &b.CourseID, &b.SlotID, &b.Status, &b.PaymentStatus,
			&b.TotalAmount, &b.FormsFilled, &b.FilesUploaded, &b.DocumentPath,
			&b.CreatedAt, &b.UpdatedAt,
			&reg.FirstName, &reg.LastName, &reg.Email, &reg.Phone,
		)
		if err != nil {
			return nil, "", err
		}
		registrants = append(registrants, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if limit > 0 && len(registrants) == limit {
		last := registrants[len(registrants)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}

	return registrants, nextCursor, nil
}

// CreateBookingDetail returns models.ErrDetailExists when the booking already has one.
func (r *BookingRepository) CreateBookingDetail(ctx context.Context, d *models.BookingDetail) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO booking_details (
            booking_id, first_name, last_name, email, phone, date_of_birth,
            address, city, postal_code, country,
            emergency_contact_name, emergency_contact_phone, medical_conditions, signature, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.db.Exec(ctx, query,
		d.BookingID, d.FirstName, d.LastName, d.Email, d.Phone, d.DateOfBirth,
		d.Address, d.City, d.PostalCode, d.Country,
		d.EmergencyContactName, d.EmergencyContactPhone, d.MedicalConditions, d.Signature, d.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.ErrDetailExists
	}
	return err
}

func (r *BookingRepository) MarkFormsFilled(ctx context.Context, id string) error {
	query := `
        UPDATE bookings SET forms_filled = true, updated_at = now()
        WHERE id = $1
    `
	return r.updateOne(ctx, query, id)
}

func (r *BookingRepository) SetDocument(ctx context.Context, id, path string) error {
	query := `
        UPDATE bookings SET document_path = $2, files_uploaded = true, updated_at = now()
        WHERE id = $1
    `
	return r.updateOne(ctx, query, id, path)
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	query := `
        UPDATE bookings SET payment_status = $2, updated_at = now()
        WHERE id = $1
    `
	return r.updateOne(ctx, query, id, status)
}

func (r *BookingRepository) updateOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) reserveSeatTx(ctx context.Context, tx pgx.Tx, booking *models.Booking) error {
	query := `
        UPDATE course_dates SET current_participants = current_participants + 1
        WHERE id = $1 AND course_id = $2 AND current_participants < max_participants
    `
	tag, err := tx.Exec(ctx, query, booking.SlotID, booking.CourseID)
	if err != nil {
		return fmt.Errorf("reserving seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSlotFull
	}
	return nil
}

func (r *BookingRepository) createBookingTx(ctx context.Context, tx pgx.Tx, b *models.Booking) error {
	query := `
        INSERT INTO bookings (
            id, user_id, course_id, course_date_id, status, payment_status,
            total_amount, forms_filled, files_uploaded, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := tx.Exec(ctx, query,
		b.ID, b.UserID, b.CourseID, b.SlotID, b.Status, b.PaymentStatus,
		b.TotalAmount, b.FormsFilled, b.FilesUploaded, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r *BookingRepository) createExtraLineTx(ctx context.Context, tx pgx.Tx, line *models.BookingExtraLine) error {
	query := `
        INSERT INTO booking_extras (id, booking_id, extra_id, price_at_booking, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := tx.Exec(ctx, query, line.ID, line.BookingID, line.ExtraID, line.PriceAtBooking, line.CreatedAt)
	return err
}

const bookingColumns = `B.id, B.user_id, B.course_id, B.course_date_id, B.status, B.payment_status,
            B.total_amount, B.forms_filled, B.files_uploaded, B.document_path,
            B.created_at, B.updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.CourseID, &b.SlotID, &b.Status, &b.PaymentStatus,
		&b.TotalAmount, &b.FormsFilled, &b.FilesUploaded, &b.DocumentPath,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
