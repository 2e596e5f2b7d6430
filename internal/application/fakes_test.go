package application

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/payment"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/search"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type fakeTours struct {
	mu       sync.Mutex
	items    map[primitive.ObjectID]entity.Tour
	ratings  map[primitive.ObjectID]entity.RatingStats
	radiusOf float64
}

func newFakeTours() *fakeTours {
	return &fakeTours{items: map[primitive.ObjectID]entity.Tour{}, ratings: map[primitive.ObjectID]entity.RatingStats{}}
}

func (f *fakeTours) add(t entity.Tour) entity.Tour {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	f.items[t.ID] = t
	return t
}

func (f *fakeTours) List(_ context.Context, _ url.Values) ([]entity.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Tour{}
	for _, t := range f.items {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTours) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("No tour found with that ID")
	}
	return &t, nil
}

func (f *fakeTours) Create(_ context.Context, t *entity.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	f.items[t.ID] = *t
	return nil
}

func (f *fakeTours) Update(_ context.Context, t *entity.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[t.ID]; !ok {
		return apperror.NotFound("No tour found with that ID")
	}
	f.items[t.ID] = *t
	return nil
}

func (f *fakeTours) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("No tour found with that ID")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTours) UpdateRatings(_ context.Context, id primitive.ObjectID, stats entity.RatingStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return apperror.NotFound("No tour found with that ID")
	}
	t.RatingsQuantity = stats.Count
	t.RatingsAverage = stats.Average
	f.items[id] = t
	f.ratings[id] = stats
	return nil
}

func (f *fakeTours) WithinRadius(_ context.Context, _, _, radius float64) ([]entity.Tour, error) {
	f.radiusOf = radius
	return []entity.Tour{}, nil
}

func (f *fakeTours) Statistics(context.Context) ([]entity.TourStatistic, error) {
	return []entity.TourStatistic{}, nil
}

func (f *fakeTours) MonthlyPlan(context.Context, int) ([]entity.MonthlyPlan, error) {
	return []entity.MonthlyPlan{}, nil
}

type fakeReviews struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]entity.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{items: map[primitive.ObjectID]entity.Review{}}
}

func (f *fakeReviews) List(_ context.Context, tourID *primitive.ObjectID, _ url.Values) ([]entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Review{}
	for _, r := range f.items {
		if tourID == nil || r.TourID == *tourID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]entity.Review, error) {
	return f.List(ctx, &tourID, nil)
}

func (f *fakeReviews) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("No review found with that ID")
	}
	return &r, nil
}

func (f *fakeReviews) Create(_ context.Context, r *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.TourID == r.TourID && existing.UserID == r.UserID {
			return apperror.Conflict("You have already reviewed this tour")
		}
	}
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	f.items[r.ID] = *r
	return nil
}

func (f *fakeReviews) Update(_ context.Context, r *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[r.ID]; !ok {
		return apperror.NotFound("No review found with that ID")
	}
	stored := *r
	stored.User = nil
	f.items[r.ID] = stored
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id primitive.ObjectID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("No review found with that ID")
	}
	delete(f.items, id)
	return &r, nil
}

func (f *fakeReviews) RatingStats(_ context.Context, tourID primitive.ObjectID) (entity.RatingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st entity.RatingStats
	sum := 0
	for _, r := range f.items {
		if r.TourID == tourID {
			st.Count++
			sum += r.Rating
		}
	}
	if st.Count > 0 {
		st.Average = float64(sum) / float64(st.Count)
	}
	return st, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]entity.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[primitive.ObjectID]entity.User{}}
}

func (f *fakeUsers) add(u entity.User) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.Active = true
	f.items[u.ID] = u
	return u
}

func (f *fakeUsers) public(u entity.User) *entity.User {
	u.Password = ""
	return &u
}

func (f *fakeUsers) List(_ context.Context, _ url.Values) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.User{}
	for _, u := range f.items {
		if u.Active {
			out = append(out, *f.public(u))
		}
	}
	return out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok || !u.Active {
		return nil, apperror.NotFound("No user found with that ID")
	}
	return f.public(u), nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == normalizeEmail(email) && u.Active {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("No user found with that email")
}

func (f *fakeUsers) GetByIDWithPassword(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok || !u.Active {
		return nil, apperror.NotFound("No user found with that ID")
	}
	return &u, nil
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return apperror.Conflict("Email is already in use")
		}
	}
	u.ID = primitive.NewObjectID()
	u.Active = true
	u.CreatedAt = time.Now().UTC()
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.items[u.ID]
	if !ok {
		return apperror.NotFound("No user found with that ID")
	}
	stored.Name, stored.Email, stored.Photo, stored.Role = u.Name, u.Email, u.Photo, u.Role
	f.items[u.ID] = stored
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return apperror.NotFound("No user found with that ID")
	}
	at := time.Now().Add(-time.Second)
	u.Password = hash
	u.PasswordChangedAt = &at
	f.items[id] = u
	return nil
}

func (f *fakeUsers) Deactivate(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return apperror.NotFound("No user found with that ID")
	}
	u.Active = false
	f.items[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("No user found with that ID")
	}
	delete(f.items, id)
	return nil
}

type fakeBookings struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]entity.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{items: map[primitive.ObjectID]entity.Booking{}}
}

func (f *fakeBookings) List(_ context.Context, _ url.Values) ([]entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Booking{}
	for _, b := range f.items {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookings) ListByUser(_ context.Context, userID primitive.ObjectID) ([]entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Booking{}
	for _, b := range f.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return nil, apperror.NotFound("No booking found with that ID")
	}
	return &b, nil
}

func (f *fakeBookings) GetBySessionID(_ context.Context, sessionID string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if sessionID != "" && b.SessionID == sessionID {
			cp := b
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("No booking found for that session")
}

func (f *fakeBookings) Create(_ context.Context, b *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if b.SessionID != "" && existing.SessionID == b.SessionID {
			return apperror.Conflict("A booking for this checkout session already exists")
		}
	}
	b.ID = primitive.NewObjectID()
	f.items[b.ID] = *b
	return nil
}

func (f *fakeBookings) Update(_ context.Context, b *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[b.ID]; !ok {
		return apperror.NotFound("No booking found with that ID")
	}
	f.items[b.ID] = *b
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperror.NotFound("No booking found with that ID")
	}
	delete(f.items, id)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func (f *fakeAudit) Insert(_ context.Context, e repo.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

type fakeResets struct {
	mu    sync.Mutex
	items map[string]string
	ttl   time.Duration
}

func newFakeResets() *fakeResets { return &fakeResets{items: map[string]string{}} }

func (f *fakeResets) Save(_ context.Context, digest, userID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[digest] = userID
	f.ttl = ttl
	return nil
}

func (f *fakeResets) Take(_ context.Context, digest string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.items[digest]
	delete(f.items, digest)
	return uid, ok, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
	next   event.Publisher
}

func (r *recordingBus) Publish(ctx context.Context, e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Publish(ctx, e)
	}
}

type fakeGateway struct {
	completed *payment.CompletedSession
	err       error
	requests  []payment.CheckoutRequest
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	f.requests = append(f.requests, req)
	return &payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (f *fakeGateway) ParseWebhook(_ []byte, _ string) (*payment.CompletedSession, error) {
	return f.completed, f.err
}

type fakeImages struct {
	saved []string
}

func (f *fakeImages) SaveUserPhoto(_ context.Context, userID string, _ io.Reader) (string, error) {
	name := "user-" + userID + ".jpeg"
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeImages) SaveTourCover(_ context.Context, tourID string, _ io.Reader) (string, error) {
	name := "tour-" + tourID + "-cover.jpeg"
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeImages) SaveTourImage(_ context.Context, tourID string, n int, _ io.Reader) (string, error) {
	name := "tour-" + tourID + "-" + string(rune('0'+n)) + ".jpeg"
	f.saved = append(f.saved, name)
	return name, nil
}

type fakeSearch struct {
	indexed map[string]string
	hits    []search.TourHit
}

func (f *fakeSearch) Index(_ context.Context, t *entity.Tour) error {
	if f.indexed == nil {
		f.indexed = map[string]string{}
	}
	f.indexed[t.ID.Hex()] = t.Name
	return nil
}

func (f *fakeSearch) Delete(_ context.Context, id string) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeSearch) Search(_ context.Context, _ string, _ int) ([]search.TourHit, error) {
	return f.hits, nil
}
