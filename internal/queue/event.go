// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// BookingQueueName is the durable queue carrying booking lifecycle events.
const BookingQueueName = "booking.events"

// Event types carried in BookingEvent.Type.
const (
    EventBookingCreated   = "booking.created"
    EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking is created or cancelled. It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingEvent struct {
    Type             string `json:"type"`
    BookingID        uint64 `json:"booking_id"`
    RoomID           uint64 `json:"room_id"`
    UserID           uint64 `json:"user_id"`
    ConfirmationCode string `json:"confirmation_code"`
    CheckInDate      string `json:"check_in_date"`
    CheckOutDate     string `json:"check_out_date"`
    TotalGuests      int    `json:"total_guests"`
    OccurredAt       string `json:"occurred_at"`
}
