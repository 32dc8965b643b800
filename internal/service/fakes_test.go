package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/tmc/langchaingo/llms"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// memPosts keeps scheduled posts in memory and honours the status guards of the Mongo store.
type memPosts struct {
	mu       sync.Mutex
	posts    map[string]*models.ScheduledPost
	claimErr error
	stolen   map[string]bool
}

func newMemPosts(posts ...*models.ScheduledPost) *memPosts {
	m := &memPosts{posts: map[string]*models.ScheduledPost{}, stolen: map[string]bool{}}
	for _, p := range posts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.posts[p.ID.Hex()] = p
	}
	return m
}

func (m *memPosts) get(id string) *models.ScheduledPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (m *memPosts) Create(ctx context.Context, post *models.ScheduledPost) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = primitive.NewObjectID()
	cp := *post
	m.posts[post.ID.Hex()] = &cp
	return post.ID.Hex(), nil
}

func (m *memPosts) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	return m.get(id), nil
}

func (m *memPosts) List(ctx context.Context, f repository.ScheduledPostFilter) ([]*models.ScheduledPost, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScheduledPost
	for _, p := range m.posts {
		if p.UserID != f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *memPosts) UpdateScheduled(ctx context.Context, id string, userID int64, u *models.ScheduledPostUpdate, now time.Time) (*models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.UserID != userID || p.Status != models.PostStatusScheduled {
		return nil, nil
	}
	if u.Message != nil {
		p.Content.Message = *u.Message
	}
	if u.ScheduledTime != nil {
		p.ScheduledTime = *u.ScheduledTime
	}
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (m *memPosts) Cancel(ctx context.Context, id string, userID int64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.UserID != userID || p.Status != models.PostStatusScheduled {
		return false, nil
	}
	p.Status = models.PostStatusCancelled
	p.UpdatedAt = now
	return true, nil
}

func (m *memPosts) FindDue(ctx context.Context, now time.Time, limit int64) ([]*models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScheduledPost
	for _, p := range m.posts {
		if p.Status == models.PostStatusScheduled && !p.ScheduledTime.After(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPosts) Claim(ctx context.Context, id string, now time.Time) (*models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	p, ok := m.posts[id]
	if !ok || m.stolen[id] || p.Status != models.PostStatusScheduled {
		return nil, nil
	}
	p.Status = models.PostStatusPublishing
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (m *memPosts) MarkPublished(ctx context.Context, id string, publishedAt time.Time, postID, postURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.Status != models.PostStatusPublishing {
		return mongo.ErrNoDocuments
	}
	p.Status = models.PostStatusPublished
	p.PublishedAt = &publishedAt
	p.PublishedPostID = postID
	p.PublishedPostURL = postURL
	p.ErrorMessage = ""
	return nil
}

func (m *memPosts) MarkFailed(ctx context.Context, id string, status string, retryCount int, errMsg string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.Status != models.PostStatusPublishing {
		return mongo.ErrNoDocuments
	}
	p.Status = status
	p.RetryCount = retryCount
	p.ErrorMessage = errMsg
	p.UpdatedAt = now
	return nil
}

type memAccounts struct {
	mu       sync.Mutex
	accounts []*models.SocialAccount
	statuses map[int64]string
}

func newMemAccounts(accounts ...*models.SocialAccount) *memAccounts {
	return &memAccounts{accounts: accounts, statuses: map[int64]string{}}
}

func activeAccount(id, userID int64, platform string) *models.SocialAccount {
	return &models.SocialAccount{
		ID:            id,
		UserID:        userID,
		Platform:      platform,
		AccountID:     "page-1",
		AccountStatus: models.AccountStatusActive,
	}
}

func (m *memAccounts) Upsert(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sa.ID = int64(len(m.accounts) + 1)
	sa.AccountStatus = models.AccountStatusActive
	m.accounts = append(m.accounts, sa)
	return sa.ID, nil
}

func (m *memAccounts) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) GetByPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.Platform == platform {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SocialAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAccounts) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (m *memAccounts) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	a, _ := m.GetByID(ctx, accountID)
	return a != nil && a.UserID == userID, nil
}

func (m *memAccounts) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	return nil
}

func (m *memAccounts) SetStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
	for _, a := range m.accounts {
		if a.ID == id {
			a.AccountStatus = status
		}
	}
	return nil
}

func (m *memAccounts) Remove(ctx context.Context, id int64) error { return nil }

type memHistory struct {
	mu      sync.Mutex
	entries []*models.PostingHistory
}

func (m *memHistory) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, ph)
	return int64(len(m.entries)), nil
}

func (m *memHistory) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.PostingHistory, error) {
	return m.entries, nil
}

type memSettings struct {
	settings map[int64]*models.Settings
}

func (m *memSettings) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	s, ok := m.settings[userID]
	return s, ok, nil
}

func (m *memSettings) Upsert(ctx context.Context, s *models.Settings) error {
	if m.settings == nil {
		m.settings = map[int64]*models.Settings{}
	}
	m.settings[s.UserID] = s
	return nil
}

type memSnapshots struct {
	docs  map[int64]*models.UserAnalytics
	saved int
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{docs: map[int64]*models.UserAnalytics{}}
}

func (m *memSnapshots) GetAll(ctx context.Context, userID int64) (*models.UserAnalytics, error) {
	return m.docs[userID], nil
}

func (m *memSnapshots) GetSnapshot(ctx context.Context, userID int64, platform string) (*models.AnalyticsSnapshot, error) {
	doc := m.docs[userID]
	if doc == nil {
		return nil, nil
	}
	return doc.Platforms[platform], nil
}

func (m *memSnapshots) SaveSnapshot(ctx context.Context, userID int64, platform string, snap *models.AnalyticsSnapshot) error {
	m.saved++
	doc := m.docs[userID]
	if doc == nil {
		doc = &models.UserAnalytics{UserID: userID, Platforms: map[string]*models.AnalyticsSnapshot{}}
		m.docs[userID] = doc
	}
	doc.Platforms[platform] = snap
	return nil
}

type memAssets struct {
	assets []*models.MediaAsset
}

func (m *memAssets) Create(ctx context.Context, ma *models.MediaAsset) (int64, error) {
	ma.ID = int64(len(m.assets) + 1)
	ma.CreatedAt = testNow
	m.assets = append(m.assets, ma)
	return ma.ID, nil
}

func (m *memAssets) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return nil, nil
}

func (m *memAssets) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.MediaAsset, error) {
	return m.assets, nil
}

func (m *memAssets) Remove(ctx context.Context, id, userID int64) error { return nil }

// stubAdapter publishes by returning a result or an error per call.
type stubAdapter struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
}

func (a *stubAdapter) Publish(ctx context.Context, acc *models.SocialAccount, content models.PostContent) (*transfer.PublishResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if err, ok := a.fail[content.Message]; ok {
		return nil, err
	}
	return &transfer.PublishResult{ID: "123_456", URL: "https://www.facebook.com/123_456"}, nil
}

type stubFetcher struct {
	calls  int
	ranges []*transfer.DateRange
	err    error
	result *transfer.PlatformAnalytics
}

func (f *stubFetcher) FetchAnalytics(ctx context.Context, acc *models.SocialAccount, dr *transfer.DateRange) (*transfer.PlatformAnalytics, error) {
	f.calls++
	f.ranges = append(f.ranges, dr)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// stubLLM answers every prompt with a canned reply and remembers the last prompt.
type stubLLM struct {
	reply       string
	err         error
	lastPrompt  string
	temperature float64
}

func (l *stubLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	l.temperature = opts.Temperature

	last := messages[len(messages)-1]
	if text, ok := last.Parts[0].(llms.TextContent); ok {
		l.lastPrompt = text.Text
	}
	if l.err != nil {
		return nil, l.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: l.reply}}}, nil
}

func (l *stubLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return l.reply, l.err
}

type memStorage struct {
	keys  []string
	types []string
	err   error
}

func (s *memStorage) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	s.types = append(s.types, contentType)
	return nil
}
