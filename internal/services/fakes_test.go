package services

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/database"
	"github.com/tripmate/backend/internal/models"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeUsers struct {
	byID map[uint]*models.User
	next uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint]*models.User{}}
}

func (f *fakeUsers) Create(user *models.User) error {
	f.next++
	user.ID = f.next
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) ExistsByEmail(email string) (bool, error) {
	_, err := f.GetByEmail(email)
	return err == nil, nil
}

func (f *fakeUsers) ExistsByNickname(nickname string) (bool, error) {
	for _, u := range f.byID {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdateLastLogin(id uint, at time.Time) error {
	if u, ok := f.byID[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// memoryStore implements SessionStore and TourCache in memory.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]uint
	attempts map[string]int64
	locks    map[string]time.Time
	values   map[string][]byte
	keywords []models.PopularKeyword
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string]uint{},
		attempts: map[string]int64{},
		locks:    map[string]time.Time{},
		values:   map[string][]byte{},
	}
}

func (m *memoryStore) CreateSession(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.sessions[id] = userID
	return id, nil
}

func (m *memoryStore) GetSession(ctx context.Context, sessionID string, ttl time.Duration) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.sessions[sessionID]; ok {
		return id, nil
	}
	return 0, database.ErrSessionNotFound
}

func (m *memoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memoryStore) IncrementLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[email]++
	return m.attempts[email], nil
}

func (m *memoryStore) ResetLoginAttempts(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, email)
	delete(m.locks, email)
	return nil
}

func (m *memoryStore) LockAccount(ctx context.Context, email string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[email] = time.Now().Add(d)
	return nil
}

func (m *memoryStore) LockRemaining(ctx context.Context, email string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.locks[email]
	if !ok || time.Now().After(until) {
		return 0, nil
	}
	return time.Until(until), nil
}

func (m *memoryStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	return nil
}

func (m *memoryStore) CachePopularKeywords(ctx context.Context, keywords []models.PopularKeyword, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = keywords
	return nil
}

func (m *memoryStore) GetCachedPopularKeywords(ctx context.Context) ([]models.PopularKeyword, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keywords, m.keywords != nil, nil
}

type fakePosts struct {
	byID map[uint]*models.Post
	next uint
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[uint]*models.Post{}}
}

func (f *fakePosts) Create(post *models.Post) error {
	f.next++
	post.ID = f.next
	f.byID[post.ID] = post
	return nil
}

func (f *fakePosts) GetByID(id uint) (*models.Post, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePosts) List(category string, offset, limit int) ([]models.Post, int64, error) {
	var out []models.Post
	for _, p := range f.byID {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakePosts) Update(post *models.Post) error {
	cp := *post
	f.byID[post.ID] = &cp
	return nil
}

func (f *fakePosts) Delete(id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) IncrementViewCount(id uint) error {
	if p, ok := f.byID[id]; ok {
		p.ViewCount++
		return nil
	}
	return gorm.ErrRecordNotFound
}

type fakeComments struct {
	byID map[uint]*models.Comment
	next uint
}

func (f *fakeComments) Create(comment *models.Comment) error {
	f.next++
	comment.ID = f.next
	f.byID[comment.ID] = comment
	return nil
}

func (f *fakeComments) GetByID(id uint) (*models.Comment, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeComments) ListByPost(postID uint) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.byID {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(comment *models.Comment) error {
	delete(f.byID, comment.ID)
	return nil
}

type fakeLikes struct {
	liked map[[2]uint]bool
}

func (f *fakeLikes) Toggle(postID, userID uint) (bool, int, error) {
	key := [2]uint{postID, userID}
	f.liked[key] = !f.liked[key]
	count := 0
	for k, v := range f.liked {
		if v && k[0] == postID {
			count++
		}
	}
	return f.liked[key], count, nil
}

type fakeInquiries struct {
	byID map[uint]*models.Inquiry
	next uint
}

func (f *fakeInquiries) Create(inquiry *models.Inquiry) error {
	f.next++
	inquiry.ID = f.next
	f.byID[inquiry.ID] = inquiry
	return nil
}

func (f *fakeInquiries) GetByID(id uint) (*models.Inquiry, error) {
	if i, ok := f.byID[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInquiries) ListVisible(userID uint, includePrivate bool, offset, limit int) ([]models.Inquiry, int64, error) {
	var out []models.Inquiry
	for id := uint(1); id <= f.next; id++ {
		i, ok := f.byID[id]
		if !ok {
			continue
		}
		if includePrivate || !i.IsPrivate || i.UserID == userID {
			out = append(out, *i)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInquiries) Answer(id, adminID uint, answer string) error {
	i, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Answer = answer
	i.AnsweredBy = &adminID
	i.Status = models.InquiryAnswered
	return nil
}

type fakeGroups struct {
	byID    map[uint]*models.TravelGroup
	members map[uint]map[uint]bool
	next    uint
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{byID: map[uint]*models.TravelGroup{}, members: map[uint]map[uint]bool{}}
}

func (f *fakeGroups) Create(group *models.TravelGroup) error {
	f.next++
	group.ID = f.next
	group.MemberCount = 1
	f.byID[group.ID] = group
	f.members[group.ID] = map[uint]bool{group.LeaderID: true}
	return nil
}

func (f *fakeGroups) GetByID(id uint) (*models.TravelGroup, error) {
	if g, ok := f.byID[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGroups) List(areaCode string, offset, limit int) ([]models.TravelGroup, int64, error) {
	var out []models.TravelGroup
	for _, g := range f.byID {
		if areaCode == "" || g.AreaCode == areaCode {
			out = append(out, *g)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeGroups) AddMember(groupID, userID uint) error {
	g, ok := f.byID[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if f.members[groupID][userID] {
		return models.ErrAlreadyMember
	}
	if g.MemberCount >= g.Capacity {
		return models.ErrGroupFull
	}
	f.members[groupID][userID] = true
	g.MemberCount++
	return nil
}

func (f *fakeGroups) RemoveMember(groupID, userID uint) error {
	if !f.members[groupID][userID] {
		return gorm.ErrRecordNotFound
	}
	delete(f.members[groupID], userID)
	f.byID[groupID].MemberCount--
	return nil
}

func (f *fakeGroups) IsMember(groupID, userID uint) (bool, error) {
	return f.members[groupID][userID], nil
}

func (f *fakeGroups) Delete(id uint) error {
	delete(f.byID, id)
	delete(f.members, id)
	return nil
}

type fakeWishlist struct {
	items []models.WishlistItem
}

func (f *fakeWishlist) Create(item *models.WishlistItem) error {
	for _, it := range f.items {
		if it.UserID == item.UserID && it.ContentID == item.ContentID {
			return gorm.ErrDuplicatedKey
		}
	}
	item.ID = uint(len(f.items) + 1)
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeWishlist) ListByUser(userID uint) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	for _, it := range f.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeWishlist) Delete(userID uint, contentID string) error {
	for i, it := range f.items {
		if it.UserID == userID && it.ContentID == contentID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSearchLogs struct {
	mu   sync.Mutex
	logs []models.SearchLog
}

func (f *fakeSearchLogs) Create(log *models.SearchLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeSearchLogs) CountSince(since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.logs)), nil
}

type fakeKeywords struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeKeywords) IncrementCount(keyword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[keyword]++
	return nil
}

func (f *fakeKeywords) sorted() []models.PopularKeyword {
	var out []models.PopularKeyword
	for k, c := range f.counts {
		out = append(out, models.PopularKeyword{Keyword: k, SearchCount: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SearchCount != out[j].SearchCount {
			return out[i].SearchCount > out[j].SearchCount
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

func (f *fakeKeywords) GetTop(limit int) ([]models.PopularKeyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeKeywords) Suggest(fragment string, limit int) ([]models.PopularKeyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PopularKeyword
	for _, k := range f.sorted() {
		if strings.Contains(k.Keyword, fragment) {
			out = append(out, k)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRegions struct {
	codes    []models.RegionCode
	upserted int
}

func (f *fakeRegions) Upsert(codes []models.RegionCode) error {
	f.upserted++
	f.codes = append(f.codes, codes...)
	return nil
}

func (f *fakeRegions) ListByArea(areaCode string) ([]models.RegionCode, error) {
	var out []models.RegionCode
	for _, c := range f.codes {
		if c.AreaCode == areaCode {
			out = append(out, c)
		}
	}
	return out, nil
}
