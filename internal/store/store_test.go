package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "mms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateBlogPost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	post, err := q.CreateBlogPost(ctx, CreateBlogPostParams{
		Title:     "Hello World",
		Slug:      "hello-world",
		Content:   "First post.",
		Status:    "draft",
		Tags:      `["news"]`,
		Author:    "admin",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	if post.ID == 0 {
		t.Error("post.ID should not be 0")
	}
	if post.Slug != "hello-world" {
		t.Errorf("Slug = %q, want %q", post.Slug, "hello-world")
	}
	if post.Status != "draft" {
		t.Errorf("Status = %q, want %q", post.Status, "draft")
	}
	if post.PublishedAt.Valid {
		t.Error("PublishedAt should be null for drafts")
	}
}

func TestCreateBlogPost_DuplicateSlug(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	params := CreateBlogPostParams{
		Title:     "Hello World",
		Slug:      "hello-world",
		Status:    "draft",
		Tags:      "[]",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := q.CreateBlogPost(ctx, params); err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	_, err := q.CreateBlogPost(ctx, params)
	if err == nil {
		t.Fatal("expected error for duplicate slug")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestGetPublishedPostBySlug(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	if _, err := q.CreateBlogPost(ctx, CreateBlogPostParams{
		Title:     "Draft Only",
		Slug:      "draft-only",
		Status:    "draft",
		Tags:      "[]",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	// Draft must be invisible to the published lookup
	if _, err := q.GetPublishedPostBySlug(ctx, "draft-only"); err != sql.ErrNoRows {
		t.Errorf("GetPublishedPostBySlug(draft) err = %v, want sql.ErrNoRows", err)
	}

	if _, err := q.CreateBlogPost(ctx, CreateBlogPostParams{
		Title:       "Published",
		Slug:        "published-post",
		Status:      "published",
		Tags:        "[]",
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	post, err := q.GetPublishedPostBySlug(ctx, "published-post")
	if err != nil {
		t.Fatalf("GetPublishedPostBySlug: %v", err)
	}
	if post.Title != "Published" {
		t.Errorf("Title = %q, want %q", post.Title, "Published")
	}
}

func TestUpdateBlogPost(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	post, err := q.CreateBlogPost(ctx, CreateBlogPostParams{
		Title:     "Original",
		Slug:      "original",
		Status:    "draft",
		Tags:      "[]",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	updated, err := q.UpdateBlogPost(ctx, UpdateBlogPostParams{
		ID:          post.ID,
		Title:       "Updated",
		Slug:        "original",
		Content:     "New content.",
		Status:      "published",
		Tags:        "[]",
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("UpdateBlogPost: %v", err)
	}

	if updated.Title != "Updated" {
		t.Errorf("Title = %q, want %q", updated.Title, "Updated")
	}
	if updated.Status != "published" {
		t.Errorf("Status = %q, want %q", updated.Status, "published")
	}
}

func TestEventRegistrations(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	event, err := q.CreateEvent(ctx, CreateEventParams{
		EventID:   "summer-meetup-a1b2c3",
		Title:     "Summer Meetup",
		EventType: "physical",
		Venue:     "Town Hall",
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(26 * time.Hour),
		Capacity:  2,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	for i, code := range []string{"aaaa1111", "bbbb2222"} {
		_, err := q.CreateEventRegistration(ctx, CreateEventRegistrationParams{
			EventID:          event.EventID,
			RegistrationCode: code,
			Name:             "Guest",
			Email:            "guest@example.com",
			CreatedAt:        now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("CreateEventRegistration: %v", err)
		}
	}

	count, err := q.CountRegistrationsForEvent(ctx, event.EventID)
	if err != nil {
		t.Fatalf("CountRegistrationsForEvent: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// Duplicate registration code must fail
	_, err = q.CreateEventRegistration(ctx, CreateEventRegistrationParams{
		EventID:          event.EventID,
		RegistrationCode: "aaaa1111",
		Email:            "other@example.com",
		CreatedAt:        now,
	})
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	// Deleting the event removes its registrations
	if err := q.DeleteEvent(ctx, event.EventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	count, err = q.CountRegistrationsForEvent(ctx, event.EventID)
	if err != nil {
		t.Fatalf("CountRegistrationsForEvent: %v", err)
	}
	if count != 0 {
		t.Errorf("count after delete = %d, want 0", count)
	}
}

func TestSubscribers_DuplicateEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	if _, err := q.CreateSubscriber(ctx, CreateSubscriberParams{
		Email:     "member@example.com",
		Name:      "Member",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateSubscriber: %v", err)
	}

	_, err := q.CreateSubscriber(ctx, CreateSubscriberParams{
		Email:     "member@example.com",
		CreatedAt: now,
	})
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestRespondToInquiry_Transitions(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	inquiry, err := q.CreateInquiry(ctx, CreateInquiryParams{
		Name:      "Visitor",
		Email:     "visitor@example.com",
		Subject:   "Question",
		Message:   "When is the next event?",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	if inquiry.Status != "pending" {
		t.Errorf("Status = %q, want %q", inquiry.Status, "pending")
	}

	affected, err := q.RespondToInquiry(ctx, RespondToInquiryParams{
		ID:            inquiry.ID,
		AdminResponse: "Next Saturday.",
		RespondedAt:   now,
	})
	if err != nil {
		t.Fatalf("RespondToInquiry: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	// Second response must not match: the inquiry is no longer pending
	affected, err = q.RespondToInquiry(ctx, RespondToInquiryParams{
		ID:            inquiry.ID,
		AdminResponse: "Again.",
		RespondedAt:   now,
	})
	if err != nil {
		t.Fatalf("RespondToInquiry: %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0", affected)
	}
}

func TestNewsletterStatusFlow(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	nl, err := q.CreateNewsletter(ctx, CreateNewsletterParams{
		Subject:     "June Update",
		Content:     "# Hello",
		ContentHTML: "<h1>Hello</h1>",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateNewsletter: %v", err)
	}
	if nl.Status != "draft" {
		t.Errorf("Status = %q, want %q", nl.Status, "draft")
	}

	affected, err := q.QueueNewsletter(ctx, nl.ID, now)
	if err != nil {
		t.Fatalf("QueueNewsletter: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}

	// Queuing twice is a no-op
	affected, err = q.QueueNewsletter(ctx, nl.ID, now)
	if err != nil {
		t.Fatalf("QueueNewsletter: %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0", affected)
	}

	// Queued newsletters can no longer be edited or deleted
	affected, err = q.UpdateNewsletterDraft(ctx, UpdateNewsletterParams{
		ID:        nl.ID,
		Subject:   "Changed",
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpdateNewsletterDraft: %v", err)
	}
	if affected != 0 {
		t.Errorf("draft update affected = %d, want 0", affected)
	}

	deleted, err := q.DeleteNewsletterDraft(ctx, nl.ID)
	if err != nil {
		t.Fatalf("DeleteNewsletterDraft: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}

	// queued -> sending -> sent
	if _, err := q.MarkNewsletterSending(ctx, nl.ID, now); err != nil {
		t.Fatalf("MarkNewsletterSending: %v", err)
	}
	if err := q.MarkNewsletterSent(ctx, nl.ID, 42, now); err != nil {
		t.Fatalf("MarkNewsletterSent: %v", err)
	}

	final, err := q.GetNewsletterByID(ctx, nl.ID)
	if err != nil {
		t.Fatalf("GetNewsletterByID: %v", err)
	}
	if final.Status != "sent" {
		t.Errorf("Status = %q, want %q", final.Status, "sent")
	}
	if final.Recipients != 42 {
		t.Errorf("Recipients = %d, want 42", final.Recipients)
	}
	if !final.SentAt.Valid {
		t.Error("SentAt should be set")
	}
}

func TestSessions(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	admin, err := q.CreateAdmin(ctx, CreateAdminParams{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: "hash",
		Role:         "superadmin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	_, err = q.CreateSession(ctx, CreateSessionParams{
		AdminID:   admin.ID,
		Token:     "digest-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sess, err := q.GetSessionByToken(ctx, "digest-1", now)
	if err != nil {
		t.Fatalf("GetSessionByToken: %v", err)
	}
	if sess.AdminID != admin.ID {
		t.Errorf("AdminID = %d, want %d", sess.AdminID, admin.ID)
	}

	// Expired sessions are invisible
	if _, err := q.GetSessionByToken(ctx, "digest-1", now.Add(2*time.Hour)); err != sql.ErrNoRows {
		t.Errorf("expired lookup err = %v, want sql.ErrNoRows", err)
	}

	// Deleting the admin cascades to sessions
	if err := q.DeleteAdmin(ctx, admin.ID); err != nil {
		t.Fatalf("DeleteAdmin: %v", err)
	}
	if _, err := q.GetSessionByToken(ctx, "digest-1", now); err != sql.ErrNoRows {
		t.Errorf("cascade lookup err = %v, want sql.ErrNoRows", err)
	}
}

func TestUpsertResetToken_ReplacesPrevious(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	admin, err := q.CreateAdmin(ctx, CreateAdminParams{
		Username:     "alice",
		PasswordHash: "hash",
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	for _, token := range []string{"first-token", "second-token"} {
		if err := q.UpsertResetToken(ctx, UpsertResetTokenParams{
			AdminID:   admin.ID,
			Token:     token,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("UpsertResetToken(%s): %v", token, err)
		}
	}

	// First token is gone, second is live
	if _, err := q.GetResetToken(ctx, "first-token", now); err != sql.ErrNoRows {
		t.Errorf("first token err = %v, want sql.ErrNoRows", err)
	}
	rt, err := q.GetResetToken(ctx, "second-token", now)
	if err != nil {
		t.Fatalf("GetResetToken: %v", err)
	}
	if rt.AdminID != admin.ID {
		t.Errorf("AdminID = %d, want %d", rt.AdminID, admin.ID)
	}
}

func TestUserSoftDelete(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:     "member@example.com",
		Name:      "Member",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}

	if err := q.SetUserActive(ctx, user.ID, false, now); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}

	// Row survives deactivation
	got, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.IsActive {
		t.Error("user should be inactive")
	}

	active, err := q.CountActiveUsers(ctx)
	if err != nil {
		t.Fatalf("CountActiveUsers: %v", err)
	}
	if active != 0 {
		t.Errorf("active = %d, want 0", active)
	}
}

func TestCountSubscribersByMonth(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{jan, jan.Add(time.Hour), feb} {
		_, err := q.CreateSubscriber(ctx, CreateSubscriberParams{
			Email:     string(rune('a'+i)) + "@example.com",
			CreatedAt: ts,
		})
		if err != nil {
			t.Fatalf("CreateSubscriber: %v", err)
		}
	}

	counts, err := q.CountSubscribersByMonth(ctx, 12)
	if err != nil {
		t.Fatalf("CountSubscribersByMonth: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("len(counts) = %d, want 2", len(counts))
	}
	if counts[0].Month != "2026-02" || counts[0].Count != 1 {
		t.Errorf("counts[0] = %+v, want 2026-02/1", counts[0])
	}
	if counts[1].Month != "2026-01" || counts[1].Count != 2 {
		t.Errorf("counts[1] = %+v, want 2026-01/2", counts[1])
	}
}
