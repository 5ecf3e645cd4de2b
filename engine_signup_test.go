package goSignup

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/MrEthical07/goSignup/credential"
	"github.com/MrEthical07/goSignup/mail"
	"github.com/MrEthical07/goSignup/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockAccountStore struct {
	mu           sync.Mutex
	accounts     map[string]Account
	byIdentity   map[string]string
	createErr    error
	findErr      error
	updateErr    error
	findCalls    int
	createCalls  int
	updateCalls  int
	nextSequence int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		accounts:   make(map[string]Account),
		byIdentity: make(map[string]string),
	}
}

func (m *mockAccountStore) FindByIdentity(_ context.Context, identity string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++

	if m.findErr != nil {
		return Account{}, m.findErr
	}

	accountID, ok := m.byIdentity[identity]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return m.accounts[accountID], nil
}

func (m *mockAccountStore) Create(_ context.Context, input CreateAccountInput) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if m.createErr != nil {
		return Account{}, m.createErr
	}
	if _, exists := m.byIdentity[input.Identity]; exists {
		return Account{}, ErrStoreDuplicateIdentity
	}

	m.nextSequence++
	account := Account{
		AccountID:      fmt.Sprintf("a%d", m.nextSequence),
		Identity:       input.Identity,
		Name:           input.Name,
		CredentialHash: input.CredentialHash,
		Birthday:       input.Birthday,
		Phone:          input.Phone,
		Address:        input.Address,
		Verified:       input.Verified,
	}
	m.accounts[account.AccountID] = account
	m.byIdentity[account.Identity] = account.AccountID
	return account, nil
}

func (m *mockAccountStore) UpdateCredentialHash(_ context.Context, accountID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	if m.updateErr != nil {
		return m.updateErr
	}

	account, ok := m.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.CredentialHash = newHash
	m.accounts[accountID] = account
	return nil
}

func (m *mockAccountStore) put(account Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.AccountID] = account
	m.byIdentity[account.Identity] = account.AccountID
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type captureMailSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failErr error
}

func (s *captureMailSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (s *captureMailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *captureMailSender) last() sentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentMail{}
	}
	return s.sent[len(s.sent)-1]
}

var mailCodeRe = regexp.MustCompile(`>(\d{4,10})</div>`)

func extractCode(t *testing.T, body string) string {
	t.Helper()

	match := mailCodeRe.FindStringSubmatch(body)
	if match == nil {
		t.Fatal("expected a verification code in the mailed body")
	}
	return match[1]
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHasher(t *testing.T) *credential.Hasher {
	t.Helper()

	hasher, err := credential.NewHasher(credential.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return hasher
}

func newTestTokenManager(t *testing.T) *token.Manager {
	t.Helper()

	tm, err := token.NewManager(token.Config{
		TTL:           defaultConfig().Token.TTL,
		SigningMethod: token.MethodHS256,
		PrivateKey:    []byte("unit-test-secret"),
		Issuer:        "gosignup-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return tm
}

func newTestEngine(t *testing.T, rdb *redis.Client, store AccountStore, sender mail.Sender) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	return &Engine{
		config:       cfg,
		pending:      newPendingRegistrationStore(rdb, cfg.OTP.RedisPrefix),
		accounts:     store,
		mailer:       sender,
		metrics:      NewMetrics(cfg.Metrics),
		hasher:       newTestHasher(t),
		tokenManager: newTestTokenManager(t),
	}
}

func validTestSignup() SignupInput {
	return SignupInput{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Phone:    "01712345678",
		Birthday: "1990-01-02",
		Address:  "1 Example Road",
	}
}

func TestSignupSuccessCreatesPendingAndMailsCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockAccountStore()
	sender := &captureMailSender{}
	engine := newTestEngine(t, rdb, store, sender)

	result, err := engine.Signup(context.Background(), validTestSignup())
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if result.Status != StatusPending {
		t.Fatalf("expected status %q, got %q", StatusPending, result.Status)
	}
	if result.Email != "alice@example.com" {
		t.Fatalf("unexpected result email %q", result.Email)
	}

	if sender.count() != 1 {
		t.Fatalf("expected exactly one mail, got %d", sender.count())
	}
	code := extractCode(t, sender.last().Body)
	if len(code) != defaultConfig().OTP.Digits {
		t.Fatalf("expected %d-digit code, got %q", defaultConfig().OTP.Digits, code)
	}

	ctx := context.Background()
	if rdb.Exists(ctx, "preg:alice@example.com").Val() != 1 {
		t.Fatal("expected pending registration key to exist")
	}
	if store.createCalls != 0 {
		t.Fatal("no account may be created before verification")
	}

	record, err := engine.pending.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if record.OTPHash == code {
		t.Fatal("stored passcode must be hashed")
	}
	if record.PassHash == "correct-horse" {
		t.Fatal("stored password must be hashed")
	}
}

func TestSignupValidationOrder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockAccountStore(), &captureMailSender{})

	cases := []struct {
		name    string
		mutate  func(*SignupInput)
		wantErr error
	}{
		{"missing email", func(in *SignupInput) { in.Email = "" }, ErrEmptyInput},
		{"missing password", func(in *SignupInput) { in.Password = "   " }, ErrEmptyInput},
		{"digits in name", func(in *SignupInput) { in.Name = "Alice 2" }, ErrInvalidName},
		{"malformed email", func(in *SignupInput) { in.Email = "alice@@example.com" }, ErrInvalidEmail},
		{"short phone", func(in *SignupInput) { in.Phone = "12345" }, ErrInvalidPhone},
		{"short password", func(in *SignupInput) { in.Password = "12345" }, ErrPasswordTooShort},
		{"name checked before email", func(in *SignupInput) {
			in.Name = "Alice 2"
			in.Email = "broken"
		}, ErrInvalidName},
		{"email checked before phone", func(in *SignupInput) {
			in.Email = "broken"
			in.Phone = "12"
		}, ErrInvalidEmail},
		{"phone checked before password", func(in *SignupInput) {
			in.Phone = "12"
			in.Password = "123"
		}, ErrInvalidPhone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validTestSignup()
			tc.mutate(&input)

			_, err := engine.Signup(context.Background(), input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestSignupNormalizesIdentity(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockAccountStore(), &captureMailSender{})

	input := validTestSignup()
	input.Email = "  Alice@Example.COM "

	result, err := engine.Signup(context.Background(), input)
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if result.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", result.Email)
	}
	if rdb.Exists(context.Background(), "preg:alice@example.com").Val() != 1 {
		t.Fatal("expected pending key under normalized identity")
	}
}

func TestSignupRejectsVerifiedDuplicate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockAccountStore()
	store.put(Account{AccountID: "a1", Identity: "alice@example.com", Verified: true})
	engine := newTestEngine(t, rdb, store, &captureMailSender{})

	_, err := engine.Signup(context.Background(), validTestSignup())
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestSignupRejectsPendingDuplicate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &captureMailSender{}
	engine := newTestEngine(t, rdb, newMockAccountStore(), sender)

	if _, err := engine.Signup(context.Background(), validTestSignup()); err != nil {
		t.Fatalf("first Signup failed: %v", err)
	}

	_, err := engine.Signup(context.Background(), validTestSignup())
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("duplicate signup must not mail, got %d mails", sender.count())
	}
}

func TestSignupMailFailureLeavesNothingPersisted(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &captureMailSender{failErr: errors.New("smtp down")}
	engine := newTestEngine(t, rdb, newMockAccountStore(), sender)

	_, err := engine.Signup(context.Background(), validTestSignup())
	if !errors.Is(err, ErrNotificationFailure) {
		t.Fatalf("expected ErrNotificationFailure, got %v", err)
	}
	if rdb.Exists(context.Background(), "preg:alice@example.com").Val() != 0 {
		t.Fatal("mail failure must leave no pending record behind")
	}

	// The identity stays available for a retry.
	sender.failErr = nil
	if _, err := engine.Signup(context.Background(), validTestSignup()); err != nil {
		t.Fatalf("retry Signup failed: %v", err)
	}
}

func TestSignupMetricsCounters(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockAccountStore(), &captureMailSender{})

	if _, err := engine.Signup(context.Background(), validTestSignup()); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	_, _ = engine.Signup(context.Background(), validTestSignup())

	bad := validTestSignup()
	bad.Email = "broken"
	_, _ = engine.Signup(context.Background(), bad)

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSignupSuccess] != 1 {
		t.Fatalf("expected 1 signup success, got %d", snap.Counters[MetricSignupSuccess])
	}
	if snap.Counters[MetricSignupDuplicate] != 1 {
		t.Fatalf("expected 1 duplicate, got %d", snap.Counters[MetricSignupDuplicate])
	}
	if snap.Counters[MetricSignupValidationRejected] != 1 {
		t.Fatalf("expected 1 validation rejection, got %d", snap.Counters[MetricSignupValidationRejected])
	}
}
