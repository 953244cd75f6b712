package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
)

func newRequestFixture(t *testing.T) (*RequestService, *AvailabilityService, *captureBus, models.User, models.User, func() *models.Availability) {
	t.Helper()
	db := newTestDB(t)
	bus := &captureBus{}
	reqSvc := NewRequestService(db, bus)
	availSvc := NewAvailabilityService(db, bus)
	sender := createUser(t, db, "sender")
	receiver := createUser(t, db, "receiver")

	window := func() *models.Availability {
		a, err := availSvc.Create(context.Background(), receiver.ID, models.CreateAvailabilityRequest{
			Date:        "2099-10-17",
			StartTime:   "23:00",
			EndTime:     "01:00",
			EnergyLevel: models.EnergyHigh,
			FriendIDs:   []string{sender.ID.String()},
		})
		if err != nil {
			t.Fatalf("create window: %v", err)
		}
		return a
	}
	return reqSvc, availSvc, bus, sender, receiver, window
}

func TestCreateRequestInsideMidnightWindow(t *testing.T) {
	svc, _, bus, sender, receiver, window := newRequestFixture(t)
	w := window()
	ctx := context.Background()

	// The window runs 23:00 into 01:00 the next day. Each of these lies
	// inside it even though some cross midnight themselves.
	valid := [][2]string{
		{"23:30", "00:30"},
		{"23:15", "23:45"},
		{"00:15", "00:45"},
	}
	for _, v := range valid {
		hr, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
			ReceiverID:     receiver.ID.String(),
			AvailabilityID: w.ID.String(),
			RequestDate:    w.Date,
			StartTime:      v[0],
			EndTime:        v[1],
		})
		if err != nil {
			t.Fatalf("%s-%s: %v", v[0], v[1], err)
		}
		if hr.Status != models.RequestPending {
			t.Fatalf("new request should be pending, got %s", hr.Status)
		}
	}

	invalid := [][2]string{
		{"22:30", "00:30"}, // starts before the window opens
		{"23:30", "01:30"}, // runs past the window close
		{"02:00", "03:00"}, // entirely outside
	}
	for _, v := range invalid {
		_, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
			ReceiverID:     receiver.ID.String(),
			AvailabilityID: w.ID.String(),
			RequestDate:    w.Date,
			StartTime:      v[0],
			EndTime:        v[1],
		})
		if !errors.Is(err, ErrOutOfWindow) {
			t.Fatalf("%s-%s: want ErrOutOfWindow, got %v", v[0], v[1], err)
		}
	}

	if got := len(bus.published(events.TopicRequestStatusChanged)); got != len(valid) {
		t.Fatalf("want %d status events, got %d", len(valid), got)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, _, sender, receiver, window := newRequestFixture(t)
	w := window()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.CreateHangoutRequest
		want error
	}{
		{"zero length", models.CreateHangoutRequest{
			ReceiverID: receiver.ID.String(), RequestDate: "2099-10-17",
			StartTime: "23:30", EndTime: "23:30",
		}, ErrInvalidTimeRange},
		{"self request", models.CreateHangoutRequest{
			ReceiverID: sender.ID.String(), RequestDate: "2099-10-17",
			StartTime: "23:30", EndTime: "23:45",
		}, ErrInvalidInput},
		{"date mismatch", models.CreateHangoutRequest{
			ReceiverID: receiver.ID.String(), AvailabilityID: w.ID.String(),
			RequestDate: "2099-10-18", StartTime: "23:30", EndTime: "23:45",
		}, ErrOutOfWindow},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, sender.ID, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDuplicatePendingRequestRejected(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	req := models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "18:00",
		EndTime:     "19:00",
	}
	first, err := svc.Create(ctx, sender.ID, req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.Create(ctx, sender.ID, req); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("want ErrDuplicateRequest, got %v", err)
	}

	// Once the first is resolved the same slot can be requested again.
	if _, err := svc.UpdateStatus(ctx, receiver.ID, first.ID, models.RequestDeclined); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if _, err := svc.Create(ctx, sender.ID, req); err != nil {
		t.Fatalf("re-request after decline: %v", err)
	}
}

func TestPendingRequestUniqueIndex(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	hr, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "18:00",
		EndTime:     "19:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A second pending row for the same tuple must fail at the store even
	// when it bypasses the service-layer count.
	dup := models.HangoutRequest{
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		RequestDate: "2099-10-17",
		StartTime:   "18:00:00",
		EndTime:     "19:00:00",
		Status:      models.RequestPending,
	}
	if err := svc.db.Create(&dup).Error; err == nil {
		t.Fatal("duplicate pending row should violate the unique index")
	}

	// Resolving the first frees the slot; the index only covers pending.
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestDeclined); err != nil {
		t.Fatalf("decline: %v", err)
	}
	fresh := models.HangoutRequest{
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		RequestDate: "2099-10-17",
		StartTime:   "18:00:00",
		EndTime:     "19:00:00",
		Status:      models.RequestPending,
	}
	if err := svc.db.Create(&fresh).Error; err != nil {
		t.Fatalf("pending row after resolution: %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	mk := func(start, end string) *models.HangoutRequest {
		hr, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
			ReceiverID:  receiver.ID.String(),
			RequestDate: "2099-10-17",
			StartTime:   start,
			EndTime:     end,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return hr
	}

	// Receiver accepts; sender may not accept.
	hr := mk("10:00", "11:00")
	if _, err := svc.UpdateStatus(ctx, sender.ID, hr.ID, models.RequestAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("sender accept: want ErrForbidden, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestAccepted); err != nil {
		t.Fatalf("receiver accept: %v", err)
	}

	// Terminal states are final.
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestDeclined); !errors.Is(err, ErrStorageConflict) {
		t.Fatalf("re-resolve: want ErrStorageConflict, got %v", err)
	}

	// Sender cancels; receiver may not cancel.
	hr = mk("11:00", "12:00")
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestCancelled); !errors.Is(err, ErrForbidden) {
		t.Fatalf("receiver cancel: want ErrForbidden, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, sender.ID, hr.ID, models.RequestCancelled); err != nil {
		t.Fatalf("sender cancel: %v", err)
	}

	// "pending" is not a transition target.
	hr = mk("12:00", "13:00")
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestPending); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("pending target: want ErrInvalidInput, got %v", err)
	}
}

func TestMarkSeenReceiverOnlyMonotonic(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	hr, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "10:00",
		EndTime:     "11:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkSeen(ctx, sender.ID, hr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("sender mark seen: want ErrForbidden, got %v", err)
	}
	if err := svc.MarkSeen(ctx, receiver.ID, hr.ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	// Idempotent.
	if err := svc.MarkSeen(ctx, receiver.ID, hr.ID); err != nil {
		t.Fatalf("second mark seen: %v", err)
	}
}

func TestDeleteAndClearHistory(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	pending, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "10:00",
		EndTime:     "11:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	resolved, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "12:00",
		EndTime:     "13:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, receiver.ID, resolved.ID, models.RequestDeclined); err != nil {
		t.Fatalf("decline: %v", err)
	}

	// Pending requests cannot be deleted out from under the other party.
	if err := svc.Delete(ctx, sender.ID, pending.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete pending: want ErrForbidden, got %v", err)
	}

	result, err := svc.ClearHistory(ctx, sender.ID)
	if err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if result.Deleted != 1 || len(result.Failed) != 0 {
		t.Fatalf("want 1 deleted 0 failed, got %+v", result)
	}

	// The pending request survived the sweep.
	sent, err := svc.ListSent(ctx, sender.ID)
	if err != nil {
		t.Fatalf("list sent: %v", err)
	}
	if len(sent) != 1 || sent[0].ID != pending.ID {
		t.Fatalf("pending request should survive, got %d", len(sent))
	}
}

func TestConfirmedPlansShowOtherParty(t *testing.T) {
	svc, _, _, sender, receiver, _ := newRequestFixture(t)
	ctx := context.Background()

	hr, err := svc.Create(ctx, sender.ID, models.CreateHangoutRequest{
		ReceiverID:  receiver.ID.String(),
		RequestDate: "2099-10-17",
		StartTime:   "18:00",
		EndTime:     "19:00",
		Message:     "coffee",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, receiver.ID, hr.ID, models.RequestAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	senderPlans, err := svc.ListConfirmedPlans(ctx, sender.ID)
	if err != nil {
		t.Fatalf("sender plans: %v", err)
	}
	if len(senderPlans) != 1 || senderPlans[0].Friend.ID != receiver.ID {
		t.Fatalf("sender should see receiver as the friend: %+v", senderPlans)
	}

	receiverPlans, err := svc.ListConfirmedPlans(ctx, receiver.ID)
	if err != nil {
		t.Fatalf("receiver plans: %v", err)
	}
	if len(receiverPlans) != 1 || receiverPlans[0].Friend.ID != sender.ID {
		t.Fatalf("receiver should see sender as the friend: %+v", receiverPlans)
	}
	if receiverPlans[0].Activity != "coffee" {
		t.Fatalf("activity should carry the message, got %q", receiverPlans[0].Activity)
	}
}
