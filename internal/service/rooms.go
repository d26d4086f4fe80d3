package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hotelmanager/hotel-booking/internal/model"
	"github.com/hotelmanager/hotel-booking/internal/repository"
	"github.com/hotelmanager/hotel-booking/internal/storage"
)

// RoomStore is the room persistence the room service needs.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	Update(ctx context.Context, id uint64, p repository.RoomPatch) (*model.Room, error)
	DeleteByID(ctx context.Context, id uint64) error
	ListAll(ctx context.Context) ([]model.Room, error)
	ListRoomTypes(ctx context.Context) ([]string, error)
	ListNeverBooked(ctx context.Context) ([]model.Room, error)
	ListAvailable(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]model.Room, error)
}

// RoomBookings lists the bookings shown on a room's detail page.
type RoomBookings interface {
	ListViewsByRoom(ctx context.Context, roomID uint64) ([]model.BookingView, error)
}

// PhotoStore saves uploaded room photos and returns their public URL.
type PhotoStore interface {
	SaveUpload(fh *multipart.FileHeader) (string, error)
}

// RoomService manages room inventory.
type RoomService struct {
	rooms    RoomStore
	bookings RoomBookings
	photos   PhotoStore
	log      *zap.Logger
}

// NewRoomService wires the room service.  log may be nil.
func NewRoomService(rooms RoomStore, bookings RoomBookings, photos PhotoStore, log *zap.Logger) *RoomService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomService{rooms: rooms, bookings: bookings, photos: photos, log: log}
}

// NewRoom is the input of AddRoom.
type NewRoom struct {
	Photo       *multipart.FileHeader
	RoomType    string
	PriceCents  uint64
	Description string
}

// AddRoom stores the photo and creates the room.
func (s *RoomService) AddRoom(ctx context.Context, in NewRoom) (*model.RoomDetail, error) {
	if strings.TrimSpace(in.RoomType) == "" {
		return nil, &Error{Kind: KindInvalid, Message: "Room type is required"}
	}
	url, err := s.savePhoto(in.Photo)
	if err != nil {
		return nil, err
	}
	room := &model.Room{
		RoomType:    strings.TrimSpace(in.RoomType),
		PriceCents:  in.PriceCents,
		Description: strings.TrimSpace(in.Description),
		PhotoURL:    url,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, storageError("Error saving a room", err)
	}
	s.log.Info("room added", zap.Uint64("room_id", room.ID), zap.String("room_type", room.RoomType))
	d := room.Detail()
	return &d, nil
}

// RoomUpdate is the input of UpdateRoom.  Nil fields are left unchanged.
type RoomUpdate struct {
	Photo       *multipart.FileHeader
	RoomType    *string
	PriceCents  *uint64
	Description *string
}

// UpdateRoom applies a partial update.  A new photo is stored first so a
// rejected upload leaves the room untouched.
func (s *RoomService) UpdateRoom(ctx context.Context, id uint64, in RoomUpdate) (*model.RoomDetail, error) {
	patch := repository.RoomPatch{RoomType: in.RoomType, PriceCents: in.PriceCents, Description: in.Description}
	if in.Photo != nil && in.Photo.Size > 0 {
		url, err := s.savePhoto(in.Photo)
		if err != nil {
			return nil, err
		}
		patch.PhotoURL = &url
	}
	if _, err := s.rooms.GetByID(ctx, id); err != nil {
		return nil, lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error updating room")
	}
	room, err := s.rooms.Update(ctx, id, patch)
	if err != nil {
		return nil, lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error updating room")
	}
	d := room.Detail()
	return &d, nil
}

// DeleteRoom removes a room and, through the store's cascade, its bookings.
func (s *RoomService) DeleteRoom(ctx context.Context, id uint64) error {
	if _, err := s.rooms.GetByID(ctx, id); err != nil {
		return lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error deleting room")
	}
	if err := s.rooms.DeleteByID(ctx, id); err != nil {
		return lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error deleting room")
	}
	s.log.Info("room deleted", zap.Uint64("room_id", id))
	return nil
}

// GetRoom returns a room with its bookings.
func (s *RoomService) GetRoom(ctx context.Context, id uint64) (*model.RoomDetail, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, repository.ErrRoomNotFound, ErrRoomNotFound, "Error getting room")
	}
	views, err := s.bookings.ListViewsByRoom(ctx, id)
	if err != nil {
		return nil, storageError("Error getting room", err)
	}
	d := room.Detail()
	d.Bookings = views
	return &d, nil
}

// ListRooms returns every room, newest first.
func (s *RoomService) ListRooms(ctx context.Context) ([]model.RoomDetail, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, storageError("Error getting all rooms", err)
	}
	return details(rooms), nil
}

// ListRoomTypes returns the distinct room types.
func (s *RoomService) ListRoomTypes(ctx context.Context) ([]string, error) {
	types, err := s.rooms.ListRoomTypes(ctx)
	if err != nil {
		return nil, storageError("Error getting room types", err)
	}
	return types, nil
}

// ListNeverBooked returns rooms without any booking.
func (s *RoomService) ListNeverBooked(ctx context.Context) ([]model.RoomDetail, error) {
	rooms, err := s.rooms.ListNeverBooked(ctx)
	if err != nil {
		return nil, storageError("Error getting available rooms", err)
	}
	return details(rooms), nil
}

// ListAvailable returns rooms free for the whole half-open range,
// optionally filtered by room type.
func (s *RoomService) ListAvailable(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]model.RoomDetail, error) {
	if !model.Day(checkOut).After(model.Day(checkIn)) {
		return nil, ErrInvalidDateRange
	}
	rooms, err := s.rooms.ListAvailable(ctx, checkIn, checkOut, roomType)
	if err != nil {
		return nil, storageError("Error getting available rooms", err)
	}
	return details(rooms), nil
}

func (s *RoomService) savePhoto(fh *multipart.FileHeader) (string, error) {
	url, err := s.photos.SaveUpload(fh)
	if err == nil {
		return url, nil
	}
	if errors.Is(err, storage.ErrEmptyUpload) || errors.Is(err, storage.ErrUnsupportedImage) {
		return "", &Error{Kind: KindInvalid, Message: err.Error(), Err: err}
	}
	return "", storageError("Fail to save image", err)
}

func details(rooms []model.Room) []model.RoomDetail {
	out := make([]model.RoomDetail, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Detail())
	}
	return out
}
