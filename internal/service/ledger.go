package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hotelmanager/hotel-booking/internal/model"
	q "github.com/hotelmanager/hotel-booking/internal/queue"
	"github.com/hotelmanager/hotel-booking/internal/repository"
)

// RoomDirectory is the subset of the room store the ledger reads.
type RoomDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// UserDirectory is the subset of the user store the ledger reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// BookingStore persists bookings.  Not-found conditions are reported with
// repository.ErrBookingNotFound.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetViewByConfirmationCode(ctx context.Context, code string) (*model.BookingView, error)
	ListViews(ctx context.Context) ([]model.BookingView, error)
	ListViewsByUser(ctx context.Context, userID uint64) ([]model.BookingView, error)
	DeleteByID(ctx context.Context, id uint64) error
}

// BookingRequest is the caller-supplied part of a new booking.
type BookingRequest struct {
	CheckInDate   time.Time
	CheckOutDate  time.Time
	NumOfAdults   int
	NumOfChildren int
}

// BookingLedger owns the booking lifecycle and the rule that bookings of
// one room never overlap.
//
// The availability check and the insert are separate statements: two
// concurrent requests for overlapping ranges of the same room can both
// pass the check. Sequential requests always see each other.
type BookingLedger struct {
	rooms    RoomDirectory
	users    UserDirectory
	bookings BookingStore
	codes    CodeGenerator
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// LedgerOption customises a BookingLedger.
type LedgerOption func(*BookingLedger)

// WithCodeGenerator replaces the confirmation code source.
func WithCodeGenerator(g CodeGenerator) LedgerOption {
	return func(l *BookingLedger) { l.codes = g }
}

// WithEventPublisher enables booking lifecycle events.
func WithEventPublisher(p EventPublisher) LedgerOption {
	return func(l *BookingLedger) { l.events = p }
}

// WithLogger sets the ledger's logger.
func WithLogger(log *zap.Logger) LedgerOption {
	return func(l *BookingLedger) { l.log = log }
}

// NewBookingLedger builds a ledger over the given stores.
func NewBookingLedger(rooms RoomDirectory, users UserDirectory, bookings BookingStore, opts ...LedgerOption) *BookingLedger {
	if rooms == nil || users == nil || bookings == nil {
		panic("nil store passed to NewBookingLedger")
	}
	l := &BookingLedger{
		rooms:    rooms,
		users:    users,
		bookings: bookings,
		codes:    NewConfirmationCode,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Overlaps reports whether the half-open ranges [inA, outA) and
// [inB, outB) share at least one night.
func Overlaps(inA, outA, inB, outB time.Time) bool {
	return inA.Before(outB) && outA.After(inB)
}

// RoomIsAvailable reports whether no existing booking overlaps the range.
func RoomIsAvailable(checkIn, checkOut time.Time, existing []model.Booking) bool {
	for _, b := range existing {
		if Overlaps(checkIn, checkOut, b.CheckInDate, b.CheckOutDate) {
			return false
		}
	}
	return true
}

// CreateBooking validates req against the room's current bookings and
// persists it.  It returns the new booking's confirmation code.
func (l *BookingLedger) CreateBooking(ctx context.Context, roomID, userID uint64, req BookingRequest) (string, error) {
	checkIn, checkOut := model.Day(req.CheckInDate), model.Day(req.CheckOutDate)
	if !checkOut.After(checkIn) {
		return "", ErrInvalidDateRange
	}
	if req.NumOfAdults < 1 || req.NumOfChildren < 0 {
		return "", ErrInvalidGuestCount
	}

	room, err := l.rooms.GetByID(ctx, roomID)
	if err != nil {
		return "", lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error saving a booking")
	}
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return "", lookupError(err, repository.ErrUserNotFound, ErrUserNotFound, "Error saving a booking")
	}

	existing, err := l.bookings.ListByRoom(ctx, room.ID)
	if err != nil {
		return "", storageError("Error saving a booking", err)
	}
	if !RoomIsAvailable(checkIn, checkOut, existing) {
		return "", ErrRoomUnavailable
	}

	code, err := l.codes()
	if err != nil {
		return "", storageError("Error generating confirmation code", err)
	}
	b := &model.Booking{
		RoomID:           room.ID,
		UserID:           user.ID,
		CheckInDate:      checkIn,
		CheckOutDate:     checkOut,
		NumOfAdults:      req.NumOfAdults,
		NumOfChildren:    req.NumOfChildren,
		ConfirmationCode: code,
	}
	b.CalculateTotalNumOfGuests()
	if err := l.bookings.Create(ctx, b); err != nil {
		return "", storageError("Error saving a booking", err)
	}
	l.log.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("room_id", b.RoomID),
		zap.Uint64("user_id", b.UserID),
		zap.String("check_in", model.FormatDate(b.CheckInDate)),
		zap.String("check_out", model.FormatDate(b.CheckOutDate)))
	l.publish(ctx, q.EventBookingCreated, b)
	return code, nil
}

// FindByConfirmationCode returns the booking with the given code.
func (l *BookingLedger) FindByConfirmationCode(ctx context.Context, code string) (*model.BookingView, error) {
	v, err := l.bookings.GetViewByConfirmationCode(ctx, code)
	if err != nil {
		return nil, lookupError(err, repository.ErrBookingNotFound, ErrBookingNotFound, "Error finding a booking")
	}
	return v, nil
}

// ListAll returns every booking, newest id first.
func (l *BookingLedger) ListAll(ctx context.Context) ([]model.BookingView, error) {
	views, err := l.bookings.ListViews(ctx)
	if err != nil {
		return nil, storageError("Error getting all bookings", err)
	}
	return views, nil
}

// ListForUser returns a user's booking history, newest id first.
func (l *BookingLedger) ListForUser(ctx context.Context, userID uint64) (*model.UserDetail, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, repository.ErrUserNotFound, ErrUserNotFound, "Error getting user bookings")
	}
	views, err := l.bookings.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, storageError("Error getting user bookings", err)
	}
	d := user.Detail()
	d.Bookings = views
	return &d, nil
}

// Cancel permanently removes a booking, freeing its date range.  Cancelling
// an id that does not exist, including one already cancelled, fails with
// ErrBookingNotFound.
func (l *BookingLedger) Cancel(ctx context.Context, bookingID uint64) error {
	return l.cancel(ctx, bookingID, 0)
}

// CancelOwned is Cancel restricted to bookings made by userID.  Bookings of
// other users are reported as ErrBookingNotFound.
func (l *BookingLedger) CancelOwned(ctx context.Context, bookingID, userID uint64) error {
	return l.cancel(ctx, bookingID, userID)
}

// cancel deletes bookingID; a non-zero owner must match the booking's user.
func (l *BookingLedger) cancel(ctx context.Context, bookingID, owner uint64) error {
	b, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return lookupError(err, repository.ErrBookingNotFound, ErrBookingNotFound, "Error cancelling a booking")
	}
	if owner != 0 && b.UserID != owner {
		return ErrBookingNotFound
	}
	if err := l.bookings.DeleteByID(ctx, bookingID); err != nil {
		return lookupError(err, repository.ErrBookingNotFound, ErrBookingNotFound, "Error cancelling a booking")
	}
	l.log.Info("booking cancelled", zap.Uint64("booking_id", b.ID), zap.Uint64("room_id", b.RoomID))
	l.publish(ctx, q.EventBookingCancelled, b)
	return nil
}

func (l *BookingLedger) publish(ctx context.Context, typ string, b *model.Booking) {
	if l.events == nil {
		return
	}
	ev := q.BookingEvent{
		Type:             typ,
		BookingID:        b.ID,
		RoomID:           b.RoomID,
		UserID:           b.UserID,
		ConfirmationCode: b.ConfirmationCode,
		CheckInDate:      model.FormatDate(b.CheckInDate),
		CheckOutDate:     model.FormatDate(b.CheckOutDate),
		TotalGuests:      b.TotalNumOfGuests,
		OccurredAt:       l.now().UTC().Format(time.RFC3339),
	}
	if err := l.events.PublishBookingEvent(ctx, ev); err != nil {
		l.log.Warn("publish booking event failed", zap.String("type", typ), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

// lookupError maps a repository not-found sentinel onto its service
// counterpart and wraps anything else as a storage failure.
func lookupError(err, notFound error, mapped *Error, msg string) error {
	if errors.Is(err, notFound) {
		return mapped
	}
	return storageError(msg, err)
}
