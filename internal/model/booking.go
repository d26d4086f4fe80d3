package model

import (
    "strings"
    "time"
)

// DateLayout is the calendar-date wire format used for check-in and
// check-out dates in requests, responses and event payloads.
const DateLayout = "2006-01-02"

// Booking records a stay in a room as stored in the `bookings` table.
// Dates carry no time-of-day component: they are always UTC midnight.
// The stay occupies the half-open range [CheckInDate, CheckOutDate).
//
// Fields:
//  ID               – primary key identifier, assigned by the store.
//  RoomID           – booked room.
//  UserID           – guest account that owns the booking.
//  CheckInDate      – first night.
//  CheckOutDate     – departure day, strictly after CheckInDate.
//  NumOfAdults      – at least one.
//  NumOfChildren    – zero or more.
//  TotalNumOfGuests – NumOfAdults + NumOfChildren.
//  ConfirmationCode – opaque code handed to the guest, immutable.
type Booking struct {
    ID               uint64    // bookings.id
    RoomID           uint64    // bookings.room_id
    UserID           uint64    // bookings.user_id
    CheckInDate      time.Time // bookings.check_in_date
    CheckOutDate     time.Time // bookings.check_out_date
    NumOfAdults      int       // bookings.num_of_adults
    NumOfChildren    int       // bookings.num_of_children
    TotalNumOfGuests int       // bookings.total_num_of_guests
    ConfirmationCode string    // bookings.confirmation_code
    CreatedAt        time.Time // bookings.created_at
}

// CalculateTotalNumOfGuests refreshes the derived guest count.
func (b *Booking) CalculateTotalNumOfGuests() {
    b.TotalNumOfGuests = b.NumOfAdults + b.NumOfChildren
}

// BookingView is the read model returned by lookups: the booking itself
// plus summaries of the room and the user it belongs to.
type BookingView struct {
    ID               uint64       `json:"id"`
    CheckInDate      string       `json:"check_in_date"`
    CheckOutDate     string       `json:"check_out_date"`
    NumOfAdults      int          `json:"num_of_adults"`
    NumOfChildren    int          `json:"num_of_children"`
    TotalNumOfGuests int          `json:"total_num_of_guest"`
    ConfirmationCode string       `json:"booking_confirmation_code"`
    Room             *RoomSummary `json:"room,omitempty"`
    User             *UserSummary `json:"user,omitempty"`
}

// View projects a booking onto its read model without associations.
func (b Booking) View() BookingView {
    return BookingView{
        ID:               b.ID,
        CheckInDate:      FormatDate(b.CheckInDate),
        CheckOutDate:     FormatDate(b.CheckOutDate),
        NumOfAdults:      b.NumOfAdults,
        NumOfChildren:    b.NumOfChildren,
        TotalNumOfGuests: b.TotalNumOfGuests,
        ConfirmationCode: b.ConfirmationCode,
    }
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
    return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
