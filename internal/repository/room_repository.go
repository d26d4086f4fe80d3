package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hotelmanager/hotel-booking/internal/model"
)

// RoomRepo provides CRUD and availability queries over the `rooms` table.
// Bookings are never loaded implicitly; callers that need a room's
// reservations ask BookingRepo for them.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = "id, room_type, price_cents, description, photo_url"

// Create inserts a room and sets its generated ID.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (room_type, price_cents, description, photo_url) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.RoomType, room.PriceCents, room.Description, room.PhotoURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID retrieves a room.  It returns ErrRoomNotFound when no row exists.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// RoomPatch lists the fields of an update.  Nil fields are left unchanged.
type RoomPatch struct {
	RoomType    *string
	PriceCents  *uint64
	Description *string
	PhotoURL    *string
}

// Update applies a partial update and returns the stored row.  The
// SET clause is built from the non-nil fields only.
func (r *RoomRepo) Update(ctx context.Context, id uint64, p RoomPatch) (*model.Room, error) {
	sets := []string{}
	args := []any{}
	if p.RoomType != nil {
		sets = append(sets, "room_type = ?")
		args = append(args, *p.RoomType)
	}
	if p.PriceCents != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, *p.PriceCents)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.PhotoURL != nil {
		sets = append(sets, "photo_url = ?")
		args = append(args, *p.PhotoURL)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := `UPDATE rooms SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteByID removes a room.  Its bookings are removed by the foreign
// key cascade.  Returns ErrRoomNotFound when nothing was deleted.
func (r *RoomRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// ListAll returns every room, newest first.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id DESC`)
}

// ListRoomTypes returns the distinct room types in alphabetical order.
func (r *RoomRepo) ListRoomTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT room_type FROM rooms ORDER BY room_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListNeverBooked returns rooms that have no booking at all.
func (r *RoomRepo) ListNeverBooked(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, `SELECT `+roomColumns+` FROM rooms
		WHERE id NOT IN (SELECT room_id FROM bookings)
		ORDER BY id DESC`)
}

// ListAvailable returns rooms with no booking overlapping the half-open
// range [checkIn, checkOut).  A booking that checks out on checkIn does
// not block the room.  roomType filters by substring when non-empty.
func (r *RoomRepo) ListAvailable(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]model.Room, error) {
	where := []string{`id NOT IN (SELECT b.room_id FROM bookings b
		WHERE b.check_in_date < ? AND b.check_out_date > ?)`}
	args := []any{model.FormatDate(checkOut), model.FormatDate(checkIn)}
	if t := strings.TrimSpace(roomType); t != "" {
		where = append(where, "LOWER(room_type) LIKE ?")
		args = append(args, "%"+strings.ToLower(t)+"%")
	}
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC`
	return r.list(ctx, q, args...)
}

func (r *RoomRepo) list(ctx context.Context, q string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var room model.Room
	var desc, photo sql.NullString
	if err := s.Scan(&room.ID, &room.RoomType, &room.PriceCents, &desc, &photo); err != nil {
		return nil, err
	}
	room.Description = desc.String
	room.PhotoURL = photo.String
	return &room, nil
}
