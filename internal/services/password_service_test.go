package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/repository"
	"stockroom/internal/utils"
)

// mockResetRepo mirrors the single-row-per-user ledger semantics.
type mockResetRepo struct {
	rows map[string]resetRow // keyed by token hash
}

type resetRow struct {
	userID    int64
	expiresAt time.Time
}

func newMockResetRepo() *mockResetRepo {
	return &mockResetRepo{rows: make(map[string]resetRow)}
}

func (m *mockResetRepo) Create(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	for hash, row := range m.rows {
		if row.userID == userID {
			delete(m.rows, hash)
		}
	}
	m.rows[tokenHash] = resetRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *mockResetRepo) Consume(_ context.Context, tokenHash string) (int64, error) {
	row, ok := m.rows[tokenHash]
	if !ok || !row.expiresAt.After(time.Now()) {
		return 0, repository.ErrNotFound
	}
	delete(m.rows, tokenHash)
	return row.userID, nil
}

func (m *mockResetRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for hash, row := range m.rows {
		if !row.expiresAt.After(time.Now()) {
			delete(m.rows, hash)
			n++
		}
	}
	return n, nil
}

type mockMailer struct {
	sent     int
	lastTo   string
	lastLink string
}

func (m *mockMailer) SendPasswordReset(_ context.Context, to, _, resetLink string) error {
	m.sent++
	m.lastTo = to
	m.lastLink = resetLink
	return nil
}

func TestResetPassword_RoundTrip(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	mailer := &mockMailer{}
	service := NewPasswordService(resetRepo, userRepo, mailer, "http://localhost:3000", 30*time.Minute)

	userRepo.users["a@x.com"] = &models.User{ID: 7, Name: "Ana", Email: "a@x.com"}

	raw, err := service.IssueToken(context.Background(), 7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := service.ResetPassword(context.Background(), raw, "newpass1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !utils.CheckPasswordHash("newpass1", userRepo.users["a@x.com"].PasswordHash) {
		t.Fatal("new password not stored")
	}
}

func TestResetPassword_SingleUse(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	service := NewPasswordService(resetRepo, userRepo, &mockMailer{}, "http://localhost:3000", 30*time.Minute)

	userRepo.users["a@x.com"] = &models.User{ID: 7, Email: "a@x.com"}

	raw, _ := service.IssueToken(context.Background(), 7)
	if err := service.ResetPassword(context.Background(), raw, "newpass1"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}
	if err := service.ResetPassword(context.Background(), raw, "another1"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("replay must fail with ErrResetTokenInvalid, got %v", err)
	}
}

func TestIssueToken_InvalidatesPrior(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	service := NewPasswordService(resetRepo, userRepo, &mockMailer{}, "http://localhost:3000", 30*time.Minute)

	userRepo.users["a@x.com"] = &models.User{ID: 7, Email: "a@x.com"}

	first, _ := service.IssueToken(context.Background(), 7)
	second, _ := service.IssueToken(context.Background(), 7)

	if err := service.ResetPassword(context.Background(), first, "newpass1"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("superseded token must be rejected, got %v", err)
	}
	if err := service.ResetPassword(context.Background(), second, "newpass1"); err != nil {
		t.Fatalf("latest token must work: %v", err)
	}
}

func TestResetPassword_Expired(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	service := NewPasswordService(resetRepo, userRepo, &mockMailer{}, "http://localhost:3000", -time.Minute)

	userRepo.users["a@x.com"] = &models.User{ID: 7, Email: "a@x.com"}

	// Negative TTL is coerced to the default; plant an already expired row
	// directly instead.
	raw := "expiredtoken"
	resetRepo.rows[hashToken(raw)] = resetRow{userID: 7, expiresAt: time.Now().Add(-time.Minute)}

	if err := service.ResetPassword(context.Background(), raw, "newpass1"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}
}

func TestRequestReset_UnknownEmailSilent(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	mailer := &mockMailer{}
	service := NewPasswordService(resetRepo, userRepo, mailer, "http://localhost:3000", 30*time.Minute)

	if err := service.RequestReset(context.Background(), "ghost@x.com"); err != nil {
		t.Fatalf("unknown email must not surface an error, got %v", err)
	}
	if mailer.sent != 0 {
		t.Fatal("no mail should be sent for unknown email")
	}
}

func TestRequestReset_SendsLink(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	mailer := &mockMailer{}
	service := NewPasswordService(resetRepo, userRepo, mailer, "http://localhost:3000/", 30*time.Minute)

	userRepo.users["a@x.com"] = &models.User{ID: 7, Name: "Ana", Email: "a@x.com"}

	if err := service.RequestReset(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if mailer.sent != 1 || mailer.lastTo != "a@x.com" {
		t.Fatalf("mail not delivered to user: sent=%d to=%q", mailer.sent, mailer.lastTo)
	}

	const prefix = "http://localhost:3000/resetpassword/"
	if len(mailer.lastLink) <= len(prefix) || mailer.lastLink[:len(prefix)] != prefix {
		t.Fatalf("unexpected reset link: %q", mailer.lastLink)
	}
	if len(resetRepo.rows) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(resetRepo.rows))
	}
}

func TestSweepExpired(t *testing.T) {
	userRepo := newMockUserRepo()
	resetRepo := newMockResetRepo()
	service := NewPasswordService(resetRepo, userRepo, &mockMailer{}, "http://localhost:3000", 30*time.Minute)

	resetRepo.rows["stale"] = resetRow{userID: 1, expiresAt: time.Now().Add(-time.Hour)}
	resetRepo.rows["fresh"] = resetRow{userID: 2, expiresAt: time.Now().Add(time.Hour)}

	service.SweepExpired(context.Background())

	if _, ok := resetRepo.rows["stale"]; ok {
		t.Fatal("expired row not purged")
	}
	if _, ok := resetRepo.rows["fresh"]; !ok {
		t.Fatal("live row must survive the sweep")
	}
}
