package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kotoba-server/internal/domain/notification"
	"kotoba-server/internal/domain/user"
	kotoba_errors "kotoba-server/pkg/errors"

	"github.com/google/uuid"
)

type fakeNotificationRepo struct {
	rows      []notification.Notification
	createErr error
	listLimit int
	marked    []uuid.UUID
	markedAll bool
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.CreatedAt = time.Now()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	f.listLimit = limit
	var out []notification.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		f.markedAll = true
		return nil
	}
	f.marked = append(f.marked, ids...)
	return nil
}

func newNotificationServiceForTest(repo *fakeNotificationRepo, users *fakeUserRepo, pusher *fakePusher) *NotificationService {
	return NewNotificationService(repo, users, pusher, nopLogger())
}

func TestDispatchPersistsAndPushesWhenOnline(t *testing.T) {
	userID := uuid.New()
	repo := &fakeNotificationRepo{}
	pusher := newFakePusher(nil)
	pusher.online[userID] = true
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), pusher)

	n, err := svc.Dispatch(context.Background(), userID, DispatchInput{
		Title:   "  New comment  ",
		Message: "Kenji replied to your post",
		Type:    notification.TypeComment,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.rows))
	}
	if n.Title != "New comment" {
		t.Errorf("expected trimmed title, got %q", n.Title)
	}
	if n.Read {
		t.Error("new notification must start unread")
	}

	if len(pusher.notifications) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pusher.notifications))
	}
	view := pusher.notifications[0]
	if view.Title != "New comment" || view.Type != notification.TypeComment {
		t.Errorf("unexpected pushed view: %+v", view)
	}
	if view.Time != "just now" {
		t.Errorf("expected %q, got %q", "just now", view.Time)
	}
	if view.Data == nil {
		t.Error("nil data must be rendered as an empty object")
	}
}

func TestDispatchOfflineStillPersists(t *testing.T) {
	userID := uuid.New()
	repo := &fakeNotificationRepo{}
	pusher := newFakePusher(nil) // user offline
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), pusher)

	if _, err := svc.Dispatch(context.Background(), userID, DispatchInput{
		Title:   "Exam ready",
		Message: "Your N3 mock exam is graded",
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatal("offline dispatch must still persist the row")
	}

	// The row shows up on the next pull.
	views, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Title != "Exam ready" {
		t.Fatalf("expected the persisted notification in the feed, got %+v", views)
	}
}

func TestDispatchRejectsBlankTitle(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), newFakePusher(nil))

	_, err := svc.Dispatch(context.Background(), uuid.New(), DispatchInput{
		Title:   "   ",
		Message: "body",
	})
	if !errors.Is(err, kotoba_errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("invalid notification was persisted")
	}
}

func TestDispatchDefaultsType(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), newFakePusher(nil))

	n, err := svc.Dispatch(context.Background(), uuid.New(), DispatchInput{
		Title:   "Maintenance",
		Message: "Tonight at 02:00 JST",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if n.Type != notification.TypeSystem {
		t.Errorf("expected default type %q, got %q", notification.TypeSystem, n.Type)
	}
}

func TestBroadcastCountsSuccesses(t *testing.T) {
	users := newFakeUserRepo(
		user.User{ID: uuid.New(), Email: "a@example.com"},
		user.User{ID: uuid.New(), Email: "b@example.com"},
		user.User{ID: uuid.New(), Email: "c@example.com"},
	)
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo, users, newFakePusher(nil))

	sent, err := svc.Broadcast(context.Background(), DispatchInput{
		Title:   "New feature",
		Message: "Pitch-accent drills are live",
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if sent != 3 {
		t.Errorf("expected 3 dispatches, got %d", sent)
	}
	if len(repo.rows) != 3 {
		t.Errorf("expected 3 persisted rows, got %d", len(repo.rows))
	}
}

func TestListCapsPageSize(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), newFakePusher(nil))

	if _, err := svc.List(context.Background(), uuid.New()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listLimit != notificationPageSize {
		t.Errorf("expected page size %d, got %d", notificationPageSize, repo.listLimit)
	}
}

func TestMarkReadEmptyMeansAll(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo, newFakeUserRepo(), newFakePusher(nil))

	if err := svc.MarkRead(context.Background(), uuid.New(), nil); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !repo.markedAll {
		t.Error("empty id list should mark the whole feed read")
	}

	id := uuid.New()
	if err := svc.MarkRead(context.Background(), uuid.New(), []uuid.UUID{id}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if len(repo.marked) != 1 || repo.marked[0] != id {
		t.Errorf("expected only %s marked, got %v", id, repo.marked)
	}
}
