package services

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/LuqmanKt98/hangout-app/config"
	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
)

// Notifier turns bus events into push and email delivery. Everything here is
// best-effort: a delivery failure is logged and dropped, never surfaced to
// the operation that raised the event.
type Notifier struct {
	db       *gorm.DB
	bus      events.Bus
	fcm      *messaging.Client
	sendgrid *sendgrid.Client
}

func NewNotifier(ctx context.Context, db *gorm.DB, bus events.Bus) *Notifier {
	n := &Notifier{db: db, bus: bus}

	if path := config.AppConfig.FirebaseCredPath; path != "" {
		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
		if err != nil {
			log.Printf("⚠️  Firebase init failed, push disabled: %v", err)
		} else if client, err := app.Messaging(ctx); err != nil {
			log.Printf("⚠️  Firebase messaging init failed, push disabled: %v", err)
		} else {
			n.fcm = client
			log.Println("✅ Firebase messaging ready")
		}
	}

	if key := config.AppConfig.SendGridAPIKey; key != "" {
		n.sendgrid = sendgrid.NewSendClient(key)
		log.Println("✅ SendGrid client ready")
	}

	return n
}

// Run consumes the bus until ctx is cancelled. Call it in its own goroutine.
func (n *Notifier) Run(ctx context.Context) {
	ch, cancel := n.bus.Subscribe(
		events.TopicRequestStatusChanged,
		events.TopicMessageNew,
		events.TopicBookingCreated,
	)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			n.handle(ctx, ev)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev events.Event) {
	title, body := n.compose(ctx, ev)
	if title == "" {
		return
	}

	actor := actorID(ev)
	for _, userID := range ev.Audience {
		// The actor already knows; notify everyone else.
		if actor == userID.String() {
			continue
		}

		var user models.User
		if err := n.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
			continue
		}

		n.sendPush(ctx, user, title, body, ev.Payload)
		if ev.Topic == events.TopicBookingCreated {
			n.sendEmail(user, title, body)
		}
	}
}

// actorID is the user who caused the event; they never get notified about
// their own action.
func actorID(ev events.Event) string {
	switch ev.Topic {
	case events.TopicRequestStatusChanged:
		switch models.RequestStatus(ev.Payload["status"]) {
		case models.RequestAccepted, models.RequestDeclined:
			return ev.Payload["receiver_id"]
		default:
			return ev.Payload["sender_id"]
		}
	case events.TopicMessageNew:
		return ev.Payload["sender_id"]
	case events.TopicBookingCreated:
		return ev.Payload["booked_by"]
	}
	return ""
}

func (n *Notifier) compose(ctx context.Context, ev events.Event) (title, body string) {
	actorName := func(key string) string {
		id, err := uuid.Parse(ev.Payload[key])
		if err != nil {
			return "Someone"
		}
		var user models.User
		if err := n.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			return "Someone"
		}
		return user.DisplayName
	}

	switch ev.Topic {
	case events.TopicRequestStatusChanged:
		switch models.RequestStatus(ev.Payload["status"]) {
		case models.RequestPending:
			return fmt.Sprintf("%s wants to hang out", actorName("sender_id")), "Open the app to respond"
		case models.RequestAccepted:
			return "Hangout confirmed", fmt.Sprintf("%s accepted your request", actorName("receiver_id"))
		case models.RequestDeclined:
			return "Request declined", fmt.Sprintf("%s can't make it this time", actorName("receiver_id"))
		case models.RequestCancelled:
			return "Hangout cancelled", fmt.Sprintf("%s cancelled the request", actorName("sender_id"))
		}
	case events.TopicMessageNew:
		return fmt.Sprintf("New message from %s", actorName("sender_id")), "Open the app to read it"
	case events.TopicBookingCreated:
		return "New booking", fmt.Sprintf("%s booked a slot on your link", actorName("booked_by"))
	}
	return "", ""
}

func (n *Notifier) sendPush(ctx context.Context, user models.User, title, body string, data map[string]string) {
	if n.fcm == nil || user.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token:        user.FCMToken,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	if _, err := n.fcm.Send(ctx, msg); err != nil {
		log.Printf("⚠️  Push to %s failed: %v", user.ID, err)
		return
	}
	log.Printf("✅ Push sent to %s", user.ID)
}

func (n *Notifier) sendEmail(user models.User, subject, body string) {
	if n.sendgrid == nil {
		log.Printf("⚠️  SendGrid not configured, skipping email to %s", user.Email)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(user.DisplayName, user.Email)
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #6366f1; margin-top: 0;">%s</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p>%s.</p>
		<div style="margin: 24px 0;">
			<a href="%s" style="background: #6366f1; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Open %s</a>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, subject, user.DisplayName, body, config.AppConfig.FrontendURL, config.AppConfig.AppName, config.AppConfig.AppName)

	message := mail.NewSingleEmail(from, subject, to, body, html)
	resp, err := n.sendgrid.Send(message)
	if err != nil {
		log.Printf("⚠️  Email to %s failed: %v", user.Email, err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("⚠️  SendGrid returned status %d for %s", resp.StatusCode, user.Email)
		return
	}
	log.Printf("✅ Email sent to %s", user.Email)
}
