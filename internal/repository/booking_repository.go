package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hotelmanager/hotel-booking/internal/model"
)

// BookingRepo provides persistence for the `bookings` table.  Dates are
// stored in DATE columns and come back as UTC midnight because the DSN
// sets parseTime=true and loc=UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, room_id, user_id, check_in_date, check_out_date,
	num_of_adults, num_of_children, total_num_of_guests, confirmation_code, created_at`

// viewSelect joins a booking with the room and user summaries it is shown with.
const viewSelect = `SELECT b.id, b.check_in_date, b.check_out_date,
	       b.num_of_adults, b.num_of_children, b.total_num_of_guests, b.confirmation_code,
	       r.id, r.room_type, r.price_cents, r.photo_url,
	       u.id, u.name, u.email, u.phone_number
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN users u ON u.id = b.user_id`

// Create inserts a booking and populates its generated ID.  The caller
// is responsible for the availability check; this method only writes.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (room_id, user_id, check_in_date, check_out_date,
		num_of_adults, num_of_children, total_num_of_guests, confirmation_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.RoomID, b.UserID, model.FormatDate(b.CheckInDate), model.FormatDate(b.CheckOutDate),
		b.NumOfAdults, b.NumOfChildren, b.TotalNumOfGuests, b.ConfirmationCode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListByRoom returns every booking currently held against the room.
func (r *BookingRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE room_id = ? ORDER BY check_in_date`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetViewByConfirmationCode returns the booking with the given code
// together with its room and user summaries.
func (r *BookingRepo) GetViewByConfirmationCode(ctx context.Context, code string) (*model.BookingView, error) {
	row := r.db.QueryRowContext(ctx, viewSelect+` WHERE b.confirmation_code = ? LIMIT 1`, code)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return v, err
}

// ListViews returns all bookings, newest id first.
func (r *BookingRepo) ListViews(ctx context.Context) ([]model.BookingView, error) {
	return r.listViews(ctx, viewSelect+` ORDER BY b.id DESC`)
}

// ListViewsByUser returns a user's bookings, newest id first.
func (r *BookingRepo) ListViewsByUser(ctx context.Context, userID uint64) ([]model.BookingView, error) {
	return r.listViews(ctx, viewSelect+` WHERE b.user_id = ? ORDER BY b.id DESC`, userID)
}

// ListViewsByRoom returns a room's bookings ordered by check-in date.
func (r *BookingRepo) ListViewsByRoom(ctx context.Context, roomID uint64) ([]model.BookingView, error) {
	return r.listViews(ctx, viewSelect+` WHERE b.room_id = ? ORDER BY b.check_in_date`, roomID)
}

// DeleteByID removes a booking.  Returns ErrBookingNotFound when no row
// was deleted, so deleting the same id twice fails the second time.
func (r *BookingRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) listViews(ctx context.Context, q string, args ...any) ([]model.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var b model.Booking
	err := s.Scan(&b.ID, &b.RoomID, &b.UserID, &b.CheckInDate, &b.CheckOutDate,
		&b.NumOfAdults, &b.NumOfChildren, &b.TotalNumOfGuests, &b.ConfirmationCode, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.CheckInDate = model.Day(b.CheckInDate)
	b.CheckOutDate = model.Day(b.CheckOutDate)
	return &b, nil
}

func scanView(s rowScanner) (*model.BookingView, error) {
	var (
		b     model.Booking
		room  model.Room
		photo sql.NullString
		user  model.UserSummary
		phone sql.NullString
	)
	err := s.Scan(&b.ID, &b.CheckInDate, &b.CheckOutDate,
		&b.NumOfAdults, &b.NumOfChildren, &b.TotalNumOfGuests, &b.ConfirmationCode,
		&room.ID, &room.RoomType, &room.PriceCents, &photo,
		&user.ID, &user.Name, &user.Email, &phone)
	if err != nil {
		return nil, err
	}
	room.PhotoURL = photo.String
	user.PhoneNumber = phone.String
	v := b.View()
	rs := room.Summary()
	v.Room = &rs
	v.User = &user
	return &v, nil
}
