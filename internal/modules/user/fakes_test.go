package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepo is an in-memory Repository that enforces the same unique keys as the schema.
type memRepo struct {
	mu      sync.Mutex
	users   map[int64]User
	resets  map[int64]PasswordReset
	nextID  int64
	nextPR  int64
	failGet error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]User{}, resets: map[int64]PasswordReset{}}
}

func (r *memRepo) WithTx(_ context.Context, fn func(Repository) error) error { return fn(r) }

func (r *memRepo) conflict(u *User) error {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return ErrDuplicateEmail
		}
		if u.PhoneNumber != nil && other.PhoneNumber != nil && *u.PhoneNumber == *other.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) find(match func(User) bool) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	for _, u := range r.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindByID(_ context.Context, id int64) (*User, error) {
	return r.find(func(u User) bool { return u.ID == id })
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u User) bool { return u.Email == email })
}

func (r *memRepo) FindByPhone(_ context.Context, phone string) (*User, error) {
	return r.find(func(u User) bool { return u.Phone() == phone })
}

func (r *memRepo) FindByVerificationToken(_ context.Context, h string) (*User, error) {
	return r.find(func(u User) bool {
		return (u.VerificationToken != nil && *u.VerificationToken == h) ||
			(u.VerifiedTokenHash != nil && *u.VerifiedTokenHash == h)
	})
}

// patch applies fn to the stored user when match accepts it, or reports ErrNotFound.
func (r *memRepo) patch(id int64, match func(User) bool, fn func(*User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !match(u) {
		return ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func anyUser(User) bool { return true }

func (r *memRepo) UpdateProfile(_ context.Context, in *User) error {
	return r.patch(in.ID, anyUser, func(u *User) error {
		u.Email, u.FirstName, u.LastName, u.PhoneNumber = in.Email, in.FirstName, in.LastName, in.PhoneNumber
		return r.conflict(u)
	})
}

func (r *memRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.patch(id, anyUser, func(u *User) error {
		u.PasswordHash = &hash
		return nil
	})
}

func (r *memRepo) SetStatus(_ context.Context, id int64, from, to Status) error {
	return r.patch(id, func(u User) bool { return u.Status == from }, func(u *User) error {
		u.Status = to
		return nil
	})
}

func (r *memRepo) Activate(_ context.Context, id int64, tokenHash string, at time.Time) error {
	pending := func(u User) bool {
		return u.Status == StatusPending && u.VerificationToken != nil && *u.VerificationToken == tokenHash
	}
	return r.patch(id, pending, func(u *User) error {
		u.Status = StatusActive
		u.VerificationToken = nil
		u.VerifiedTokenHash = &tokenHash
		u.VerifiedAt = &at
		return nil
	})
}

func (r *memRepo) SetVerificationToken(_ context.Context, id int64, tokenHash string) error {
	return r.patch(id, func(u User) bool { return u.Status == StatusPending }, func(u *User) error {
		u.VerificationToken = &tokenHash
		return nil
	})
}

func (r *memRepo) status(id int64) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Status
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) sorted() []User {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) List(_ context.Context, skip, limit int) ([]User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	if skip > len(all) {
		skip = len(all)
	}
	end := min(skip+limit, len(all))
	return all[skip:end], len(all), nil
}

func (r *memRepo) ListAll(context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), nil
}

func (r *memRepo) CreatePasswordReset(_ context.Context, pr *PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPR++
	pr.ID = r.nextPR
	pr.CreatedAt = time.Now().UTC()
	r.resets[pr.ID] = *pr
	return nil
}

func (r *memRepo) FindPasswordReset(_ context.Context, userID int64, otpHash string) (*PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pr := range r.resets {
		if pr.UserID == userID && pr.OTPHash == otpHash {
			cp := pr
			return &cp, nil
		}
	}
	return nil, ErrInvalidOrExpiredOtp
}

func (r *memRepo) DeletePasswordReset(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resets[id]; !ok {
		return ErrInvalidOrExpiredOtp
	}
	delete(r.resets, id)
	return nil
}

func (r *memRepo) DeletePasswordResetsByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pr := range r.resets {
		if pr.UserID == userID {
			delete(r.resets, id)
		}
	}
	return nil
}

func (r *memRepo) RecordFailedReset(_ context.Context, userID int64, maxAttempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pr := range r.resets {
		if pr.UserID != userID {
			continue
		}
		pr.Attempts++
		if pr.Attempts >= maxAttempts {
			delete(r.resets, id)
			continue
		}
		r.resets[id] = pr
	}
	return nil
}

// racingRepo runs a hook once, right after a lookup returns, as a concurrent request would.
type racingRepo struct {
	*memRepo
	afterFindByID       func()
	afterTokenLookup    func()
	afterPasswordLookup func()
}

func (r *racingRepo) WithTx(_ context.Context, fn func(Repository) error) error { return fn(r) }

func (r *racingRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, err := r.memRepo.FindByID(ctx, id)
	if hook := r.afterFindByID; hook != nil {
		r.afterFindByID = nil
		hook()
	}
	return u, err
}

func (r *racingRepo) FindByVerificationToken(ctx context.Context, h string) (*User, error) {
	u, err := r.memRepo.FindByVerificationToken(ctx, h)
	if hook := r.afterTokenLookup; hook != nil {
		r.afterTokenLookup = nil
		hook()
	}
	return u, err
}

func (r *racingRepo) FindPasswordReset(ctx context.Context, userID int64, otpHash string) (*PasswordReset, error) {
	pr, err := r.memRepo.FindPasswordReset(ctx, userID, otpHash)
	if hook := r.afterPasswordLookup; hook != nil {
		r.afterPasswordLookup = nil
		hook()
	}
	return pr, err
}

// outbox captures queued notifications instead of pushing them to Redis.
type outbox struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (o *outbox) Enqueue(_ context.Context, n notification.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, n)
	return nil
}

func (o *outbox) last(t *testing.T) notification.Notification {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent, "no notification queued")
	return o.sent[len(o.sent)-1]
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

var (
	tokenPattern = regexp.MustCompile(`token=(\S+)`)
	codePattern  = regexp.MustCompile(`code is (\d{6})`)
)

// verificationToken extracts the raw token from the last verification email.
func (o *outbox) verificationToken(t *testing.T) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(o.last(t).TextBody)
	require.Len(t, m, 2)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return token
}

func (o *outbox) resetCode(t *testing.T) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(o.last(t).TextBody)
	require.Len(t, m, 2)
	return m[1]
}

type stubIdentity struct {
	id  *Identity
	err error
}

func (s stubIdentity) Verify(context.Context, string, string) (*Identity, error) {
	return s.id, s.err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc    Service
	cfg    Config
	repo   *memRepo
	outbox *outbox
	clock  *clock
	tokens *TokenIssuer
	hasher PasswordHasher
}

func newFixture(t *testing.T, identity IdentityVerifier) *fixture {
	t.Helper()
	clk := &clock{t: time.Now().UTC()}
	tokens, err := NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	tokens.now = clk.Now

	repo := newMemRepo()
	box := &outbox{}
	notifier := notification.NewService(discardLogger(), box,
		templates.NewEngine(templates.Config{}, discardLogger()), "no-reply@example.com")
	hasher := &BcryptHasher{Cost: bcrypt.MinCost}
	if identity == nil {
		identity = stubIdentity{err: errors.New("no identity configured")}
	}

	cfg := Config{
		Repo:     repo,
		Logger:   discardLogger(),
		Hasher:   hasher,
		Tokens:   tokens,
		Identity: identity,
		Notifier: notifier,
		Settings: Settings{
			FrontendURL:    "https://portfolio.example.com/",
			GoogleClientID: "client-id",
			AccountFrom:    "accounts@example.com",
			OTPTTL:         15 * time.Minute,
			ReplayWindow:   24 * time.Hour,
		},
		Now: clk.Now,
	}
	return &fixture{svc: NewService(&cfg), cfg: cfg, repo: repo, outbox: box, clock: clk, tokens: tokens, hasher: hasher}
}

// racing swaps in a repository that interleaves writes with the service's reads.
func (f *fixture) racing() *racingRepo {
	r := &racingRepo{memRepo: f.repo}
	cfg := f.cfg
	cfg.Repo = r
	f.svc = NewService(&cfg)
	return r
}

// seed stores an account directly, bypassing signup.
func (f *fixture) seed(t *testing.T, email, password string, status Status, admin bool) *User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	u := &User{Email: email, FirstName: "Test", LastName: "User", PasswordHash: &hash, Status: status, IsAdmin: admin}
	require.NoError(t, f.repo.Create(context.Background(), u))
	return u
}

func (f *fixture) signup(t *testing.T, email, phone, password string) *User {
	t.Helper()
	u, err := f.svc.Signup(context.Background(), SignupInput{
		Email: email, FirstName: "Ada", LastName: "Lovelace", PhoneNumber: phone, Password: password,
	})
	require.NoError(t, err)
	return u
}
