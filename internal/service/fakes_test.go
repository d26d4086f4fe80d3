package service

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hotelmanager/hotel-booking/internal/model"
	q "github.com/hotelmanager/hotel-booking/internal/queue"
	"github.com/hotelmanager/hotel-booking/internal/repository"
	"github.com/hotelmanager/hotel-booking/internal/storage"
)

// memStore is an in-memory stand-in for the room, user and booking
// repositories.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uint64]model.Room
	users    map[uint64]model.User
	bookings map[uint64]model.Booking
	nextID   uint64
	failWith error // returned by every booking call when set
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    map[uint64]model.Room{},
		users:    map[uint64]model.User{},
		bookings: map[uint64]model.Booking{},
	}
}

func (m *memStore) addRoom(r model.Room) { m.rooms[r.ID] = r }
func (m *memStore) addUser(u model.User) { m.users[u.ID] = u }

type memRooms struct{ *memStore }
type memUsers struct{ *memStore }
type memBookings struct{ *memStore }

func (m memRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &r, nil
}

func (m memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	b.ID = m.nextID
	m.bookings[b.ID] = *b
	return nil
}

func (m memBookings) ListByRoom(_ context.Context, roomID uint64) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Booking{}
	for _, b := range m.bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (m memBookings) view(b model.Booking) model.BookingView {
	v := b.View()
	r := m.rooms[b.RoomID].Summary()
	u := m.users[b.UserID]
	v.Room = &r
	v.User = &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	return v
}

func (m memBookings) GetViewByConfirmationCode(_ context.Context, code string) (*model.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ConfirmationCode == code {
			v := m.view(b)
			return &v, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (m memBookings) listViews(keep func(model.Booking) bool) []model.BookingView {
	ids := make([]uint64, 0, len(m.bookings))
	for id, b := range m.bookings {
		if keep(b) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]model.BookingView, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.view(m.bookings[id]))
	}
	return out
}

func (m memBookings) ListViews(_ context.Context) ([]model.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.listViews(func(model.Booking) bool { return true }), nil
}

func (m memBookings) ListViewsByUser(_ context.Context, userID uint64) ([]model.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listViews(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (m memBookings) ListViewsByRoom(_ context.Context, roomID uint64) ([]model.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listViews(func(b model.Booking) bool { return b.RoomID == roomID }), nil
}

func (m memBookings) DeleteByID(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

// memRoomStore implements RoomStore over memStore.
type memRoomStore struct{ *memStore }

func (m memRoomStore) Create(_ context.Context, r *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.rooms[r.ID] = *r
	return nil
}

func (m memRoomStore) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	return memRooms(m).GetByID(ctx, id)
}

func (m memRoomStore) Update(_ context.Context, id uint64, p repository.RoomPatch) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if p.RoomType != nil {
		r.RoomType = *p.RoomType
	}
	if p.PriceCents != nil {
		r.PriceCents = *p.PriceCents
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.PhotoURL != nil {
		r.PhotoURL = *p.PhotoURL
	}
	m.rooms[id] = r
	return &r, nil
}

func (m memRoomStore) DeleteByID(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m.rooms, id)
	for bid, b := range m.bookings {
		if b.RoomID == id {
			delete(m.bookings, bid)
		}
	}
	return nil
}

func (m memRoomStore) sorted(keep func(model.Room) bool) []model.Room {
	out := []model.Room{}
	for _, r := range m.rooms {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m memRoomStore) ListAll(_ context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(model.Room) bool { return true }), nil
}

func (m memRoomStore) ListRoomTypes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, r := range m.rooms {
		if !seen[r.RoomType] {
			seen[r.RoomType] = true
			out = append(out, r.RoomType)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m memRoomStore) ListNeverBooked(_ context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Room) bool {
		for _, b := range m.bookings {
			if b.RoomID == r.ID {
				return false
			}
		}
		return true
	}), nil
}

func (m memRoomStore) ListAvailable(_ context.Context, checkIn, checkOut time.Time, roomType string) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Room) bool {
		if roomType != "" && !strings.Contains(strings.ToLower(r.RoomType), strings.ToLower(roomType)) {
			return false
		}
		for _, b := range m.bookings {
			if b.RoomID == r.ID && Overlaps(checkIn, checkOut, b.CheckInDate, b.CheckOutDate) {
				return false
			}
		}
		return true
	}), nil
}

// fakePhotos records uploads without touching the filesystem.
type fakePhotos struct {
	saved []string
	err   error
}

func (p *fakePhotos) SaveUpload(fh *multipart.FileHeader) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if fh == nil || fh.Size == 0 {
		return "", storage.ErrEmptyUpload
	}
	url := "/upload/" + fh.Filename
	p.saved = append(p.saved, url)
	return url, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []q.BookingEvent
	err    error
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, ev q.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
