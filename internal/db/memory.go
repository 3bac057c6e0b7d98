package db

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is a map-backed Store used when no APP_DATABASE_URL is
// configured (dev mode) and throughout the tests. Nothing survives a
// restart.
type MemoryStore struct {
	mu sync.Mutex

	nextID   uint
	subs     map[string]*Subscription // by endpoint
	settings map[string]string
	articles map[string]*Article // by external id
	logs     []NotificationLog
	users    map[uint]*User
	apikeys  map[uint]*APIKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:     make(map[string]*Subscription),
		settings: make(map[string]string),
		articles: make(map[string]*Article),
		users:    make(map[uint]*User),
		apikeys:  make(map[uint]*APIKey),
	}
}

func (m *MemoryStore) UpsertSubscription(sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.subs[sub.Endpoint]; ok {
		existing.P256dh = sub.P256dh
		existing.Auth = sub.Auth
		existing.UserAgent = sub.UserAgent
		existing.IPAddress = sub.IPAddress
		existing.LastUsed = now
		existing.IsActive = true
		*sub = *existing
		return nil
	}

	m.nextID++
	sub.ID = m.nextID
	sub.CreatedAt = now
	sub.LastUsed = now
	sub.IsActive = true
	cp := *sub
	m.subs[sub.Endpoint] = &cp
	return nil
}

func (m *MemoryStore) DeactivateSubscription(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[endpoint]; ok {
		sub.IsActive = false
	}
	return nil
}

func (m *MemoryStore) RemoveSubscription(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[endpoint]; !ok {
		return ErrNotFound
	}
	delete(m.subs, endpoint)
	return nil
}

func (m *MemoryStore) ListActiveSubscriptions() ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Subscription
	for _, sub := range m.subs {
		if sub.IsActive {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CountActiveSubscriptions() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, sub := range m.subs {
		if sub.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) PruneInactiveSubscriptions(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for endpoint, sub := range m.subs {
		if !sub.IsActive && sub.LastUsed.Before(cutoff) {
			delete(m.subs, endpoint)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) GetSetting(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[key], nil
}

func (m *MemoryStore) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryStore) UpsertArticle(a *Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.articles[a.ExternalID]; ok {
		existing.Title = a.Title
		existing.Excerpt = a.Excerpt
		existing.URL = a.URL
		existing.ImageURL = a.ImageURL
		existing.PublishedAt = a.PublishedAt
		existing.UpdatedAt = now
		*a = *existing
		return nil
	}

	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	m.articles[a.ExternalID] = &cp
	return nil
}

func (m *MemoryStore) GetArticle(externalID string) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) ClaimNotification(externalID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[externalID]
	if !ok || a.NotifiedAt != nil {
		return false, nil
	}
	t := at
	a.NotifiedAt = &t
	return true, nil
}

func (m *MemoryStore) AppendNotificationLog(l *NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *MemoryStore) GetUserByUsername(username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(id uint) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) CreateUser(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteUser(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) ListUsers() ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateUserPassword(id uint, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *MemoryStore) GetActiveAPIKey(key string) (*APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.apikeys {
		if k.Key == key && k.Active {
			cp := *k
			if u, ok := m.users[k.UserID]; ok {
				cp.User = *u
			}
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAPIKeyByID(id uint) (*APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.apikeys[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *MemoryStore) CreateAPIKey(k *APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apikeys {
		if existing.Key == k.Key {
			return ErrDuplicate
		}
	}
	m.nextID++
	k.ID = m.nextID
	k.CreatedAt = time.Now()
	cp := *k
	m.apikeys[k.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteAPIKey(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.apikeys, id)
	return nil
}

func (m *MemoryStore) ListAPIKeys() ([]APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]APIKey, 0, len(m.apikeys))
	for _, k := range m.apikeys {
		out = append(out, *k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SetAPIKeyActive(id uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.apikeys[id]; ok {
		k.Active = active
	}
	return nil
}

func (m *MemoryStore) RecentNotificationLogs(limit int) ([]NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	out := make([]NotificationLog, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}
