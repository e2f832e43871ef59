package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tiendakit/auth"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*auth.User)
	return created, args.Error(1)
}

func (m *MockUserStore) MarkEmailValidated(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg auth.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// memoryUserStore is an in-memory directory with a unique-email constraint.
// It stands in for the Bun repository where tests need real state
// transitions rather than canned expectations.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]*auth.User{}}
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[auth.NormalizeEmail(email)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	clone := *user
	return &clone, nil
}

func (s *memoryUserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID.String() == id {
			clone := *user
			return &clone, nil
		}
	}

	return nil, repository.NewRecordNotFound()
}

func (s *memoryUserStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := auth.NormalizeEmail(user.Email)
	if _, exists := s.users[email]; exists {
		return nil, errUniqueEmail
	}

	clone := *user
	clone.Email = email
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	if clone.Role == "" {
		clone.Role = auth.RoleGuest
	}

	s.users[email] = &clone

	out := clone
	return &out, nil
}

func (s *memoryUserStore) MarkEmailValidated(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[auth.NormalizeEmail(email)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	user.EmailValidated = true

	clone := *user
	return &clone, nil
}

var errUniqueEmail = &uniqueConstraintError{}

type uniqueConstraintError struct{}

func (e *uniqueConstraintError) Error() string {
	return "UNIQUE constraint failed: users.email"
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey string
	expiration time.Duration
	issuer     string
	baseURL    string
}

func (c testConfig) GetSigningKey() string             { return c.signingKey }
func (c testConfig) GetTokenExpiration() time.Duration { return c.expiration }
func (c testConfig) GetIssuer() string                 { return c.issuer }
func (c testConfig) GetWebServiceURL() string          { return c.baseURL }

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		expiration: time.Hour,
		issuer:     "tiendakit",
		baseURL:    "http://localhost:3000",
	}
}

// captureMailer records every message it accepts
type captureMailer struct {
	mu       sync.Mutex
	messages []auth.Message
}

func (m *captureMailer) Send(ctx context.Context, msg auth.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) last() (auth.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return auth.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
