package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mahirfaisal/locallynk/internal/apperror"
	"github.com/mahirfaisal/locallynk/internal/auth"
	"github.com/mahirfaisal/locallynk/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// Using a fake (not a mock framework) keeps tests dependency-free and easy
// to read — you can see exactly what the fake does.
type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Like the real store, the email key is the single uniqueness authority.
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict("Email already in use")
	}
	user.ID = fmt.Sprintf("user-fake-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()

	copied := *user
	f.byID[user.ID] = &copied
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

// newTestAuthService returns an AuthService wired with fake dependencies.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// bcrypt minimum cost — makes tests fast
	ps := auth.NewPasswordServiceForTest()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, ts, ps, logger)
}

// validSignup returns a SignupInput that passes every check.
func validSignup() SignupInput {
	return SignupInput{
		Username:        "alex",
		Email:           "alex@example.com",
		DOB:             "2000-06-16",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	}
}

// =========================================================================
// Signup TESTS
// =========================================================================

func TestSignup_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("Signup() user has no ID")
	}
	if result.Token == "" {
		t.Error("Signup() returned empty token")
	}
	if result.RedirectURL != "/login" {
		t.Errorf("RedirectURL = %q, want %q", result.RedirectURL, "/login")
	}
	if result.User.PasswordHash == "hunter2hunter2" {
		t.Fatal("Signup() stored the plaintext password")
	}
	if result.User.PasswordHash == "" {
		t.Fatal("Signup() stored no password hash")
	}
}

func TestSignup_MissingFields(t *testing.T) {
	blank := func(mutate func(*SignupInput)) SignupInput {
		in := validSignup()
		mutate(&in)
		return in
	}

	tests := []struct {
		name string
		in   SignupInput
	}{
		{"missing username", blank(func(in *SignupInput) { in.Username = "" })},
		{"missing email", blank(func(in *SignupInput) { in.Email = "" })},
		{"missing dob", blank(func(in *SignupInput) { in.DOB = "" })},
		{"missing password", blank(func(in *SignupInput) { in.Password = "" })},
		{"missing confirmPassword", blank(func(in *SignupInput) { in.ConfirmPassword = "" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(t, newFakeUserRepo())

			_, err := svc.Signup(context.Background(), tt.in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Signup() = %v, want ErrValidation", err)
			}

			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Message != "All fields are required" {
				t.Errorf("message = %q, want %q", appErr.Message, "All fields are required")
			}
		})
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	in := validSignup()
	in.ConfirmPassword = "something-else"

	_, err := svc.Signup(context.Background(), in)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Signup() = %v, want ErrValidation", err)
	}
}

func TestSignup_InvalidDOB(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	for _, dob := range []string{"not-a-date", "16/06/2000", "2000-13-40"} {
		in := validSignup()
		in.DOB = dob

		_, err := svc.Signup(context.Background(), in)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Signup() with dob=%q = %v, want ErrValidation", dob, err)
		}
	}
}

func TestSignup_NormalizesEmailAndUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	in := validSignup()
	in.Username = "  alex  "
	in.Email = "  Alex@Example.COM "

	result, err := svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if result.User.Email != "alex@example.com" {
		t.Errorf("Email = %q, want lower-cased trimmed form", result.User.Email)
	}
	if result.User.Username != "alex" {
		t.Errorf("Username = %q, want trimmed form", result.User.Username)
	}
}

// Case-insensitive duplicate: "Alex@Example.COM" and "alex@example.com"
// normalize to the same key, so the second signup must conflict no matter
// the casing of either request.
func TestSignup_DuplicateEmailCaseInsensitive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}

	in := validSignup()
	in.Email = "ALEX@EXAMPLE.COM"
	_, err := svc.Signup(context.Background(), in)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Signup() = %v, want ErrConflict", err)
	}

	// Exactly one record stored
	if len(repo.byEmail) != 1 {
		t.Errorf("store holds %d records, want 1", len(repo.byEmail))
	}
}

func TestSignup_RepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("disk on fire")
	svc := newTestAuthService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	if err == nil {
		t.Fatal("Signup() should propagate repository failures")
	}
	// An internal failure must not masquerade as a client error.
	if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Signup() classified an internal failure as a client error: %v", err)
	}
}

// =========================================================================
// AGE CALCULATION TESTS
// =========================================================================

// Floor-to-last-birthday: on 2024-06-15, someone born 2000-06-16 has not
// had this year's birthday yet (23); someone born 2000-06-14 has (24).
func TestComputeAge(t *testing.T) {
	tests := []struct {
		name  string
		dob   string
		today string
		want  int
	}{
		{"birthday tomorrow", "2000-06-16", "2024-06-15", 23},
		{"birthday yesterday", "2000-06-14", "2024-06-15", 24},
		{"birthday today", "2000-06-15", "2024-06-15", 24},
		{"earlier month", "2000-01-31", "2024-06-15", 24},
		{"later month", "2000-12-01", "2024-06-15", 23},
		{"same month earlier day", "2000-06-01", "2024-06-15", 24},
		{"born this year", "2024-01-01", "2024-06-15", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dob, err := time.Parse("2006-01-02", tt.dob)
			if err != nil {
				t.Fatalf("parsing dob: %v", err)
			}
			today, err := time.Parse("2006-01-02", tt.today)
			if err != nil {
				t.Fatalf("parsing today: %v", err)
			}

			if got := computeAge(dob, today); got != tt.want {
				t.Errorf("computeAge(%s, %s) = %d, want %d", tt.dob, tt.today, got, tt.want)
			}
		})
	}
}

func TestSignup_StoresAgeSnapshot(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	// Pin the clock so the stored age is deterministic.
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	result, err := svc.Signup(context.Background(), validSignup()) // dob 2000-06-16
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if result.User.Age != 23 {
		t.Errorf("stored Age = %d, want 23 (birthday not reached)", result.User.Age)
	}
}

// =========================================================================
// Login TESTS
// =========================================================================

// signupTestUser registers an account and returns it.
func signupTestUser(t *testing.T, svc *AuthService) *model.User {
	t.Helper()
	result, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	return result.User
}

func TestLogin_Success(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	created := signupTestUser(t, svc)

	result, err := svc.Login(context.Background(), "alex@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.User.ID != created.ID {
		t.Errorf("Login() user ID = %q, want %q", result.User.ID, created.ID)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.RedirectURL != "/" {
		t.Errorf("RedirectURL = %q, want %q", result.RedirectURL, "/")
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	signupTestUser(t, svc)

	if _, err := svc.Login(context.Background(), " ALEX@Example.com ", "hunter2hunter2"); err != nil {
		t.Fatalf("Login() with differently-cased email error = %v", err)
	}
}

// Unknown email and wrong password must be the SAME error — a caller must
// not be able to tell which one happened.
func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	signupTestUser(t, svc)

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "hunter2hunter2")
	_, errWrongPw := svc.Login(context.Background(), "alex@example.com", "wrong-password")

	for name, err := range map[string]error{"unknown email": errUnknown, "wrong password": errWrongPw} {
		if !errors.Is(err, apperror.ErrInvalidCredentials) {
			t.Errorf("Login() with %s = %v, want ErrInvalidCredentials", name, err)
		}
	}

	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("error messages differ: %q vs %q — leaks which field was wrong",
			errUnknown.Error(), errWrongPw.Error())
	}
}

func TestLogin_RepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	signupTestUser(t, svc)

	repo.getErr = errors.New("disk on fire")

	_, err := svc.Login(context.Background(), "alex@example.com", "hunter2hunter2")
	if err == nil {
		t.Fatal("Login() should propagate repository failures")
	}
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Error("Login() reported an internal failure as bad credentials")
	}
}

// =========================================================================
// CheckSession TESTS
// =========================================================================

func TestCheckSession_RoundTrip(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	signupTestUser(t, svc)

	result, err := svc.Login(context.Background(), "alex@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, ok := svc.CheckSession(result.Token)
	if !ok {
		t.Fatal("CheckSession() rejected a freshly issued token")
	}

	if claims.ID != result.User.ID {
		t.Errorf("claims.ID = %q, want %q", claims.ID, result.User.ID)
	}
	if claims.Username != result.User.Username {
		t.Errorf("claims.Username = %q, want %q", claims.Username, result.User.Username)
	}
	if claims.Email != result.User.Email {
		t.Errorf("claims.Email = %q, want %q", claims.Email, result.User.Email)
	}
}

func TestCheckSession_InvalidTokens(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	// Missing, malformed, and forged tokens all come back (nil, false) —
	// never an error, this path runs on every anonymous page load.
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, ok := svc.CheckSession(raw); ok {
			t.Errorf("CheckSession(%q) = authenticated, want false", raw)
		}
	}
}

// =========================================================================
// GetUserByID TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())
	created := signupTestUser(t, svc)

	got, err := svc.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("Email = %q, want %q", got.Email, created.Email)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.GetUserByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByID() = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID_Empty(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	if _, err := svc.GetUserByID(context.Background(), ""); err == nil {
		t.Fatal("GetUserByID(\"\") should fail")
	}
}
