package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/olegiv/mms-go/internal/auth"
	"github.com/olegiv/mms-go/internal/store"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "mms-mw-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// issueSession creates an admin, a token, and a matching session row.
func issueSession(t *testing.T, db *sql.DB, issuer *auth.TokenIssuer, role string) (string, store.Admin) {
	t.Helper()

	ctx := t.Context()
	q := store.New(db)
	now := time.Now()

	admin, err := q.CreateAdmin(ctx, store.CreateAdminParams{
		Username:     "admin-" + role,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	token, expiresAt, err := issuer.Issue(admin.ID, admin.Username, admin.Role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = q.CreateSession(ctx, store.CreateSessionParams{
		AdminID:   admin.ID,
		Token:     auth.TokenDigest(token),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	return token, admin
}

func TestAuth_ValidToken(t *testing.T) {
	db := testDB(t)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, admin := issueSession(t, db, issuer, "admin")

	var gotClaims *auth.Claims
	handler := Auth(issuer, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaims(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotClaims == nil || gotClaims.ID != admin.ID {
		t.Errorf("claims = %+v, want admin ID %d", gotClaims, admin.ID)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	db := testDB(t)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	handler := Auth(issuer, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_RevokedSession(t *testing.T) {
	db := testDB(t)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, _ := issueSession(t, db, issuer, "admin")

	// Revoke the session; the still-valid JWT must now be rejected
	q := store.New(db)
	if _, err := q.DeleteSessionByToken(t.Context(), auth.TokenDigest(token)); err != nil {
		t.Fatalf("DeleteSessionByToken: %v", err)
	}

	handler := Auth(issuer, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSuperadmin(t *testing.T) {
	db := testDB(t)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	protected := Auth(issuer, db)(RequireSuperadmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	adminToken, _ := issueSession(t, db, issuer, "admin")
	superToken, _ := issueSession(t, db, issuer, "superadmin")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"admin is forbidden", adminToken, http.StatusForbidden},
		{"superadmin is allowed", superToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/admins", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want 429", last)
	}

	// A different IP has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh IP status = %d, want 200", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr fallback", "10.0.0.1:5555", nil, "10.0.0.1:5555"},
		{"x-real-ip wins", "10.0.0.1:5555", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded-for first hop", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
