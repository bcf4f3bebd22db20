package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"clipper/internal/model"
	"clipper/internal/queue"

	"github.com/rs/zerolog"
)

var testLogger = zerolog.New(io.Discard)

// memDB is an in-memory stand-in for the Postgres repositories.
type memDB struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*model.User
	files    map[string]*model.UploadedFile
	clips    map[string]*model.Clip
	events   map[string]bool
	sessions map[string]bool

	failClipDelete bool
	failClipLookup bool
}

func newMemDB() *memDB {
	return &memDB{
		now:      time.Now,
		users:    map[string]*model.User{},
		files:    map[string]*model.UploadedFile{},
		clips:    map[string]*model.Clip{},
		events:   map[string]bool{},
		sessions: map[string]bool{},
	}
}

func (m *memDB) addUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
}

func (m *memDB) addFile(f model.UploadedFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = &f
}

func (m *memDB) addClip(c model.Clip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips[c.ID] = &c
}

func (m *memDB) credits(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Credits
}

func (m *memDB) hasFile(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[id]
	return ok
}

func (m *memDB) fileQueued(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	return ok && f.Uploaded
}

func (m *memDB) clipCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips)
}

// UserRepository

func (m *memDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memDB) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.StripeCustomerID = &customerID
	}
	return nil
}

func (m *memDB) AddCredits(ctx context.Context, userID string, amount int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	if u.Credits+amount < 0 {
		return nil, errors.New("credits check constraint violated")
	}
	u.Credits += amount
	cp := *u
	return &cp, nil
}

// UploadedFileRepository

func (m *memDB) CreateUploadedFile(ctx context.Context, f *model.UploadedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	cp.CreatedAt = m.now()
	m.files[f.ID] = &cp
	return nil
}

func (m *memDB) GetUploadedFileByID(ctx context.Context, id string) (*model.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memDB) GetUploadedFileForUser(ctx context.Context, id, userID string) (*model.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok && f.UserID == userID {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memDB) ListUploadedFilesByUser(ctx context.Context, userID string) ([]model.UploadedFileSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.UploadedFileSummary
	for _, f := range m.files {
		if f.UserID != userID {
			continue
		}
		s := model.UploadedFileSummary{UploadedFile: *f}
		for _, c := range m.clips {
			if c.UploadedFileID != nil && *c.UploadedFileID == f.ID {
				s.ClipCount++
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDB) ClaimForSubmission(ctx context.Context, id string, lease time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.Uploaded {
		return false, nil
	}
	now := m.now()
	if f.SubmitClaimedAt != nil && !f.SubmitClaimedAt.Before(now.Add(-lease)) {
		return false, nil
	}
	f.SubmitClaimedAt = &now
	return true, nil
}

func (m *memDB) ReleaseSubmissionClaim(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok && !f.Uploaded {
		f.SubmitClaimedAt = nil
	}
	return nil
}

func (m *memDB) ListStaleClaims(ctx context.Context, lease time.Duration, limit int) ([]model.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-lease)
	var out []model.UploadedFile
	for _, f := range m.files {
		if !f.Uploaded && f.SubmitClaimedAt != nil && f.SubmitClaimedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memDB) MarkQueued(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		f.Uploaded = true
		f.Status = model.UploadedFileStatusQueued
		f.SubmitClaimedAt = nil
	}
	return nil
}

func (m *memDB) ResetQueued(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		f.Uploaded = false
		f.Status = model.UploadedFileStatusPending
		f.SubmitClaimedAt = nil
	}
	return nil
}

func (m *memDB) DeleteUploadedFileIfNoClips(ctx context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.UserID != userID {
		return false, nil
	}
	for _, c := range m.clips {
		if c.UploadedFileID != nil && *c.UploadedFileID == id {
			return false, nil
		}
	}
	delete(m.files, id)
	return true, nil
}

// ClipRepository

func (m *memDB) GetClipForUser(ctx context.Context, id, userID string) (*model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClipLookup {
		return nil, errors.New("connection reset")
	}
	if c, ok := m.clips[id]; ok && c.UserID == userID {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memDB) ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Clip
	for _, c := range m.clips {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDB) DeleteClipForUser(ctx context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClipDelete {
		return false, errors.New("connection reset")
	}
	c, ok := m.clips[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(m.clips, id)
	return true, nil
}

func (m *memDB) CountClipsByUploadedFile(ctx context.Context, uploadedFileID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.clips {
		if c.UploadedFileID != nil && *c.UploadedFileID == uploadedFileID && c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// CreditRepository

func (m *memDB) GrantCheckoutCredits(ctx context.Context, grant *model.CreditGrant) (*model.CreditGrantResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var user *model.User
	for _, u := range m.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == grant.CustomerID {
			user = u
		}
	}
	if user == nil {
		return nil, nil
	}
	if m.events[grant.EventID] || m.sessions[grant.CheckoutSessionID] {
		return &model.CreditGrantResult{UserID: user.ID, Applied: false, Balance: user.Credits}, nil
	}
	m.events[grant.EventID] = true
	m.sessions[grant.CheckoutSessionID] = true
	user.Credits += grant.Credits
	grant.UserID = user.ID
	return &model.CreditGrantResult{UserID: user.ID, Applied: true, Balance: user.Credits}, nil
}

// fakeQueue records enqueued jobs.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.ProcessVideoEvent
	err  error
}

func (q *fakeQueue) EnqueueProcessVideo(ctx context.Context, ev queue.ProcessVideoEvent) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, ev)
	return "msg-" + ev.UploadedFileID, nil
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// fakeObjectStore signs URLs as plain strings and records deletes.
type fakeObjectStore struct {
	mu         sync.Mutex
	presignErr error
	deleteErr  error
	deleted    []string
	lastTTL    time.Duration
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.lastTTL = ttl
	return "https://store.test/" + key + "?sig=get", nil
}

func (s *fakeObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.lastTTL = ttl
	return "https://store.test/" + key + "?sig=put", nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

// fakeCache is a map-backed dashboard cache that counts invalidations.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string]*model.Dashboard
	invalidations map[string]int
	generations   map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:       map[string]*model.Dashboard{},
		invalidations: map[string]int{},
		generations:   map[string]int64{},
	}
}

func (c *fakeCache) Get(ctx context.Context, userID string) (*model.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[userID], nil
}

func (c *fakeCache) Generation(ctx context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID], nil
}

func (c *fakeCache) Set(ctx context.Context, userID string, generation int64, d *model.Dashboard) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] != generation {
		return false, nil
	}
	c.entries[userID] = d
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidations[userID]++
	c.generations[userID]++
	return nil
}

func (c *fakeCache) invalidated(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations[userID]
}

func strPtr(s string) *string { return &s }
