package model

// Room is a bookable unit of inventory as stored in the `rooms` table.
// Prices are kept in cents so that arithmetic stays exact; the JSON
// projections expose a decimal price.
//
// Fields:
//  ID          – primary key identifier.
//  RoomType    – free-form category such as "Single" or "Suite".
//  PriceCents  – nightly price in cents, never negative.
//  Description – marketing text.
//  PhotoURL    – reference returned by the photo store (/upload/...).
type Room struct {
    ID          uint64 // rooms.id
    RoomType    string // rooms.room_type
    PriceCents  uint64 // rooms.price_cents
    Description string // rooms.description
    PhotoURL    string // rooms.photo_url
}

// Price returns the nightly price as a decimal amount.
func (r Room) Price() float64 { return float64(r.PriceCents) / 100.0 }

// RoomSummary is the compact projection of a room embedded in booking views.
type RoomSummary struct {
    ID       uint64  `json:"id"`
    RoomType string  `json:"room_type"`
    Price    float64 `json:"room_price"`
    PhotoURL string  `json:"room_photo_url"`
}

// Summary projects a room onto its compact JSON shape.
func (r Room) Summary() RoomSummary {
    return RoomSummary{ID: r.ID, RoomType: r.RoomType, Price: r.Price(), PhotoURL: r.PhotoURL}
}

// RoomDetail is the full public projection of a room.  Bookings is only
// populated by the single-room lookup.
type RoomDetail struct {
    ID          uint64        `json:"id"`
    RoomType    string        `json:"room_type"`
    Price       float64       `json:"room_price"`
    PhotoURL    string        `json:"room_photo_url"`
    Description string        `json:"room_description"`
    Bookings    []BookingView `json:"bookings,omitempty"`
}

// Detail projects a room onto its full JSON shape.
func (r Room) Detail() RoomDetail {
    return RoomDetail{
        ID:          r.ID,
        RoomType:    r.RoomType,
        Price:       r.Price(),
        PhotoURL:    r.PhotoURL,
        Description: r.Description,
    }
}
