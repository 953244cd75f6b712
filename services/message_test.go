package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
)

func newThreadFixture(t *testing.T) (*MessageService, *captureBus, models.User, models.User, models.User, *models.HangoutRequest) {
	t.Helper()
	db := newTestDB(t)
	bus := &captureBus{}
	msgSvc := NewMessageService(db, bus)
	reqSvc := NewRequestService(db, bus)
	sender := createUser(t, db, "sender")
	receiver := createUser(t, db, "receiver")
	outsider := createUser(t, db, "outsider")

	hr, err := reqSvc.Create(context.Background(), sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "18:00",
		EndTime:     "19:00",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return msgSvc, bus, sender, receiver, outsider, hr
}

func TestThreadParticipantsOnly(t *testing.T) {
	svc, _, sender, receiver, outsider, hr := newThreadFixture(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, sender.ID, hr.ID, "see you there"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, outsider.ID, hr.ID, "let me in"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("outsider send: want ErrNotFound, got %v", err)
	}
	if _, err := svc.List(ctx, outsider.ID, hr.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("outsider list: want ErrNotFound, got %v", err)
	}

	msgs, err := svc.List(ctx, receiver.ID, hr.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "see you there" {
		t.Fatalf("thread wrong: %+v", msgs)
	}
	if msgs[0].Sender.ID != sender.ID {
		t.Fatalf("sender profile not attached")
	}
}

func TestMessageEventTargetsOtherParty(t *testing.T) {
	svc, bus, sender, receiver, _, hr := newThreadFixture(t)

	if _, err := svc.Send(context.Background(), sender.ID, hr.ID, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	evs := bus.published(events.TopicMessageNew)
	if len(evs) != 1 {
		t.Fatalf("want 1 message event, got %d", len(evs))
	}
	if len(evs[0].Audience) != 1 || evs[0].Audience[0] != receiver.ID {
		t.Fatalf("event should target the receiver only: %v", evs[0].Audience)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, _, sender, receiver, _, hr := newThreadFixture(t)
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		if _, err := svc.Send(ctx, sender.ID, hr.ID, body); err != nil {
			t.Fatalf("send %s: %v", body, err)
		}
	}
	if _, err := svc.Send(ctx, receiver.ID, hr.ID, "reply"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	// Your own messages never count as unread for you.
	count, err := svc.UnreadCount(ctx, receiver.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if count != 3 {
		t.Fatalf("receiver unread: want 3, got %d", count)
	}
	count, err = svc.UnreadCount(ctx, sender.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if count != 1 {
		t.Fatalf("sender unread: want 1, got %d", count)
	}

	if err := svc.MarkRead(ctx, receiver.ID, hr.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, err = svc.UnreadCount(ctx, receiver.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if count != 0 {
		t.Fatalf("after mark read: want 0, got %d", count)
	}

	// The sender's view of their own sent messages is untouched; the
	// receiver's reply stays unread for the sender.
	count, _ = svc.UnreadCount(ctx, sender.ID)
	if count != 1 {
		t.Fatalf("sender unread should still be 1, got %d", count)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	svc, _, sender, _, _, hr := newThreadFixture(t)

	if _, err := svc.Send(context.Background(), sender.ID, hr.ID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank body: want ErrInvalidInput, got %v", err)
	}
}
