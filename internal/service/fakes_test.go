package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
)

// Test-only in-memory fakes for the repository interfaces. Error
// fields allow behavior injection per test.

type testEnv struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	tokens   *fakeTokenRepo
	todos    *fakeTodoRepo
	mail     *fakeMailer

	manager *auth.SessionManager
	hasher  auth.PasswordHasher

	auth    AuthService
	profile ProfileService
	todoSvc TodoService
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	tokens := newFakeTokenRepo()
	todos := newFakeTodoRepo()
	mail := &fakeMailer{}

	users.todos = todos
	users.sessions = sessions
	users.tokens = tokens

	codec := auth.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"))
	cache := auth.NewSessionCache(time.Minute, 64)
	manager := auth.NewSessionManager(sessions, codec, cache, 24*time.Hour)
	// Minimal argon2 cost so the suite stays fast.
	hasher := &auth.Argon2Hasher{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	log := zerolog.Nop()

	return &testEnv{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		todos:    todos,
		mail:     mail,
		manager:  manager,
		hasher:   hasher,
		auth:     NewAuthService(users, manager, hasher, log),
		profile:  NewProfileService(users, tokens, manager, hasher, mail, "https://todo.example.com", log),
		todoSvc:  NewTodoService(todos, log),
	}
}

// seedUser creates a user with a real argon2id hash of the given
// password and returns the user plus a live identity.
func (e *testEnv) seedUser(t *testing.T, name, email, password string) (*domain.User, *auth.Identity) {
	t.Helper()

	user := &domain.User{Name: name, Email: email}
	if password != "" {
		hashed, err := e.hasher.Hash(password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		user.Password = &hashed
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	session, _, err := e.manager.Create(context.Background(), user.ID, "192.0.2.1", "test-agent")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return user, &auth.Identity{UserID: user.ID, SessionID: session.ID}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	// collaborators swept by DeleteCascade
	todos    *fakeTodoRepo
	sessions *fakeSessionRepo
	tokens   *fakeTokenRepo

	cascadeErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	// Error before any mutation, mirroring a rolled-back transaction.
	if f.cascadeErr != nil {
		return f.cascadeErr
	}

	f.mu.Lock()
	if _, ok := f.users[id]; !ok {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(f.users, id)
	f.mu.Unlock()

	if f.todos != nil {
		f.todos.deleteAllForUser(id)
	}
	if f.sessions != nil {
		_ = f.sessions.DeleteAllForUser(ctx, id)
	}
	if f.tokens != nil {
		_ = f.tokens.DeleteAllForUser(ctx, id)
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) countForUser(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, session := range f.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.EmailChangeToken

	replaceErr error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]*domain.EmailChangeToken)}
}

func (f *fakeTokenRepo) Replace(_ context.Context, token *domain.EmailChangeToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	for id, existing := range f.tokens {
		if existing.UserID == token.UserID {
			delete(f.tokens, id)
		}
	}
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) FindByToken(_ context.Context, raw string) (*domain.EmailChangeToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.Token == raw {
			copied := *token
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTokenRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, id)
	return nil
}

func (f *fakeTokenRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, id)
		}
	}
	return nil
}

func (f *fakeTokenRepo) CountForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, token := range f.tokens {
		if token.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeTodoRepo struct {
	mu     sync.Mutex
	todos  map[uint]*domain.Todo
	nextID uint
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[uint]*domain.Todo), nextID: 1}
}

func (f *fakeTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	todo.ID = f.nextID
	f.nextID++
	copied := *todo
	f.todos[todo.ID] = &copied
	return nil
}

func (f *fakeTodoRepo) FindForUser(_ context.Context, id uint, userID uuid.UUID) (*domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *todo
	return &copied, nil
}

func (f *fakeTodoRepo) ListForUser(_ context.Context, userID uuid.UUID, _ repository.TodoFilter) ([]domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Todo
	for _, todo := range f.todos {
		if todo.UserID == userID {
			out = append(out, *todo)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, todo *domain.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return domain.ErrNotFound
	}
	copied := *todo
	f.todos[todo.ID] = &copied
	return nil
}

func (f *fakeTodoRepo) DeleteForUser(_ context.Context, id uint, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeTodoRepo) deleteAllForUser(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, todo := range f.todos {
		if todo.UserID == userID {
			delete(f.todos, id)
		}
	}
}

type sentMail struct {
	oldEmail  string
	newEmail  string
	verifyURL string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) SendEmailChangeConfirmation(_ context.Context, oldEmail, newEmail, verifyURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{oldEmail: oldEmail, newEmail: newEmail, verifyURL: verifyURL})
	return nil
}
