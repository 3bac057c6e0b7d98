package push

import (
	"context"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"

	"pushpress/internal/db"
	"pushpress/internal/vapid"
)

// Sender delivers one encrypted message to one subscription and reports
// the push service's HTTP status. The web-push protocol details
// (payload encryption, VAPID JWT signing, transport) live behind this
// interface.
type Sender interface {
	Send(ctx context.Context, message []byte, sub db.Subscription, keys vapid.Keys) (statusCode int, err error)
}

type webpushSender struct {
	subject string
	ttl     int
}

// NewWebPushSender returns the production Sender backed by webpush-go.
// subject is the contact address announced to push services.
func NewWebPushSender(contactEmail string) Sender {
	return &webpushSender{
		subject: contactEmail, // webpush-go adds mailto: automatically
		ttl:     60 * 60 * 24,
	}
}

func (s *webpushSender) Send(ctx context.Context, message []byte, sub db.Subscription, keys vapid.Keys) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  keys.Public,
		VAPIDPrivateKey: keys.Private,
		TTL:             s.ttl,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
