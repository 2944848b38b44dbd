package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"license-admin-go/internal/db"
	"license-admin-go/internal/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeUserRepo keeps raw field maps, so every read goes through the same
// decoding as the Firestore repository.
type fakeUserRepo struct {
	mu        sync.Mutex
	order     []string
	docs      map[string]map[string]interface{}
	listErr   error
	updateErr error
	listCalls int
	updates   []fakeUpdate

	// updateDelay holds each Update outside the lock so calls can overlap.
	updateDelay time.Duration
	inFlight    int
	maxInFlight int
}

type fakeUpdate struct {
	ID     string
	Fields map[string]interface{}
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{docs: make(map[string]map[string]interface{})}
}

func (r *fakeUserRepo) put(id string, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		r.order = append(r.order, id)
	}
	r.docs[id] = data
}

func (r *fakeUserRepo) doc(id string) map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id]
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*models.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	users := make([]*models.UserRecord, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, db.UserFromData(id, r.docs[id]))
	}
	return users, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.docs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return db.UserFromData(id, data), nil
}

func (r *fakeUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	delay := r.updateDelay
	r.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight--
	if r.updateErr != nil {
		return r.updateErr
	}
	data, ok := r.docs[id]
	if !ok {
		return db.ErrNotFound
	}
	for k, v := range fields {
		if payments, ok := v.([]models.Payment); ok {
			list := make([]interface{}, 0, len(payments))
			for _, p := range payments {
				list = append(list, map[string]interface{}{
					"date": p.Date, "value": p.Value, "note": p.Note, "addedAt": p.AddedAt,
				})
			}
			v = list
		}
		data[k] = v
	}
	r.updates = append(r.updates, fakeUpdate{ID: id, Fields: fields})
	return nil
}

type fakePendingRepo struct {
	mu        sync.Mutex
	created   []*models.PendingActivation
	createErr error
}

func (r *fakePendingRepo) Create(_ context.Context, p *models.PendingActivation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	c := *p
	r.created = append(r.created, &c)
	return "pending-" + p.Email, nil
}

func (r *fakePendingRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.created {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

type fakeIdentity struct {
	mu        sync.Mutex
	signedOut []string
	err       error
}

func (f *fakeIdentity) Authenticate(_ context.Context, token string) (*Principal, error) {
	return nil, errors.New("not used")
}

func (f *fakeIdentity) SignOut(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, uid)
	return f.err
}

func floatPtr(v float64) *float64 { return &v }

// record builds a user for direct use with the pure functions.
func record(isPro bool, source string) *models.UserRecord {
	return &models.UserRecord{ID: source, Email: source + "@example.com", IsPro: isPro, ProActivatedBy: source}
}
