package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/internal/repository"
	pkgLog "github.com/workhubhq/presence-gateway/pkg/logger"
)

type mockMessageRepo struct {
	insertFn      func(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error)
	historyFn     func(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error)
	markReadFn    func(ctx context.Context, readerID, senderID int64) (int64, error)
	unreadCountFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockMessageRepo) Insert(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, senderID, recipientID, content)
	}
	return nil, errors.New("insert not configured")
}

func (m *mockMessageRepo) History(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID, otherUserID, limit, offset)
	}
	return nil, nil
}

func (m *mockMessageRepo) Conversations(_ context.Context, _ int64) ([]domain.Conversation, error) {
	return nil, nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, readerID, senderID)
	}
	return 0, nil
}

func (m *mockMessageRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*domain.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &domain.User{ID: id}, nil
}

type mockUnreadCache struct {
	getFn func(ctx context.Context, userID int64) (int64, bool, error)

	sets        []int64
	invalidated []int64
}

func (m *mockUnreadCache) Get(ctx context.Context, userID int64) (int64, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return 0, false, nil
}

func (m *mockUnreadCache) Set(_ context.Context, userID, _ int64) error {
	m.sets = append(m.sets, userID)
	return nil
}

func (m *mockUnreadCache) Invalidate(_ context.Context, userID int64) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

func newTestService(msgs *mockMessageRepo, users *mockUserRepo, cache *mockUnreadCache) MessageService {
	return NewMessageService(msgs, users, cache, pkgLog.InitializeTestZapLogger())
}

func TestSendReturnsStoredRow(t *testing.T) {
	stored := &domain.Message{ID: 9, SenderID: 1, RecipientID: 2, Content: "hi", CreatedAt: time.Now()}
	msgs := &mockMessageRepo{
		insertFn: func(_ context.Context, senderID, recipientID int64, content string) (*domain.Message, error) {
			if senderID != 1 || recipientID != 2 || content != "hi" {
				t.Errorf("Insert(%d, %d, %q): unexpected arguments", senderID, recipientID, content)
			}
			return stored, nil
		},
	}
	cache := &mockUnreadCache{}
	svc := newTestService(msgs, &mockUserRepo{}, cache)

	got, err := svc.Send(context.Background(), 1, 2, "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got != stored {
		t.Error("Send must return the repository's row, not a copy")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 2 {
		t.Errorf("cache invalidations = %v, want [2] (the recipient)", cache.invalidated)
	}
}

func TestSendTrimsContent(t *testing.T) {
	msgs := &mockMessageRepo{
		insertFn: func(_ context.Context, _, _ int64, content string) (*domain.Message, error) {
			if content != "hello" {
				t.Errorf("Insert content = %q, want trimmed %q", content, "hello")
			}
			return &domain.Message{Content: content}, nil
		},
	}
	svc := newTestService(msgs, &mockUserRepo{}, &mockUnreadCache{})

	if _, err := svc.Send(context.Background(), 1, 2, "  hello \n"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSendRejectsEmptyContent(t *testing.T) {
	svc := newTestService(&mockMessageRepo{}, &mockUserRepo{}, &mockUnreadCache{})

	for _, content := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Send(context.Background(), 1, 2, content); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Send(%q): err = %v, want ErrEmptyContent", content, err)
		}
	}
}

func TestSendUnknownRecipient(t *testing.T) {
	users := &mockUserRepo{
		findByIDFn: func(context.Context, int64) (*domain.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := newTestService(&mockMessageRepo{}, users, &mockUnreadCache{})

	if _, err := svc.Send(context.Background(), 1, 404, "hi"); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("err = %v, want ErrRecipientNotFound", err)
	}
}

func TestHistoryClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	msgs := &mockMessageRepo{
		historyFn: func(_ context.Context, _, _ int64, limit, offset int) ([]domain.Message, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := newTestService(msgs, &mockUserRepo{}, &mockUnreadCache{})

	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -3, 50, 0},
		{1000, 10, 50, 10},
		{25, 5, 25, 5},
	}
	for _, tc := range cases {
		if _, err := svc.History(context.Background(), 1, 2, tc.limit, tc.offset); err != nil {
			t.Fatalf("History: %v", err)
		}
		if gotLimit != tc.wantLimit || gotOffset != tc.wantOffset {
			t.Errorf("History(limit=%d, offset=%d) passed (%d, %d), want (%d, %d)",
				tc.limit, tc.offset, gotLimit, gotOffset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestMarkReadInvalidatesReaderCache(t *testing.T) {
	msgs := &mockMessageRepo{
		markReadFn: func(_ context.Context, readerID, senderID int64) (int64, error) {
			if readerID != 7 || senderID != 3 {
				t.Errorf("MarkRead(%d, %d): unexpected arguments", readerID, senderID)
			}
			return 4, nil
		},
	}
	cache := &mockUnreadCache{}
	svc := newTestService(msgs, &mockUserRepo{}, cache)

	count, err := svc.MarkRead(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != 7 {
		t.Errorf("cache invalidations = %v, want [7] (the reader)", cache.invalidated)
	}
}

func TestUnreadCountReadThrough(t *testing.T) {
	repoCalls := 0
	msgs := &mockMessageRepo{
		unreadCountFn: func(context.Context, int64) (int64, error) {
			repoCalls++
			return 12, nil
		},
	}

	t.Run("miss fills the cache", func(t *testing.T) {
		cache := &mockUnreadCache{}
		svc := newTestService(msgs, &mockUserRepo{}, cache)

		count, err := svc.UnreadCount(context.Background(), 5)
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if count != 12 {
			t.Errorf("count = %d, want 12", count)
		}
		if len(cache.sets) != 1 || cache.sets[0] != 5 {
			t.Errorf("cache fills = %v, want [5]", cache.sets)
		}
	})

	t.Run("hit skips the repository", func(t *testing.T) {
		repoCalls = 0
		cache := &mockUnreadCache{
			getFn: func(context.Context, int64) (int64, bool, error) {
				return 3, true, nil
			},
		}
		svc := newTestService(msgs, &mockUserRepo{}, cache)

		count, err := svc.UnreadCount(context.Background(), 5)
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if count != 3 {
			t.Errorf("count = %d, want the cached 3", count)
		}
		if repoCalls != 0 {
			t.Errorf("repository queried %d times on a cache hit, want 0", repoCalls)
		}
	})

	t.Run("cache error falls through to the repository", func(t *testing.T) {
		repoCalls = 0
		cache := &mockUnreadCache{
			getFn: func(context.Context, int64) (int64, bool, error) {
				return 0, false, errors.New("redis: connection refused")
			},
		}
		svc := newTestService(msgs, &mockUserRepo{}, cache)

		count, err := svc.UnreadCount(context.Background(), 5)
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if count != 12 || repoCalls != 1 {
			t.Errorf("count = %d (repo calls %d), want 12 from the repository", count, repoCalls)
		}
	})
}
