package services

import (
	"context"
	"fmt"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/stores"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

type Notifier interface {
	Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error
}

// NopNotifier drops every notification. Used when Firebase is not configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uint, string, string, map[string]string) error {
	return nil
}

type messageSender interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type FirebaseNotifier struct {
	sender messageSender
	users  stores.UserStore
	logger zerolog.Logger
}

// NewFirebaseNotifier builds a messaging client. An empty credentialsFile
// falls back to application default credentials.
func NewFirebaseNotifier(ctx context.Context, credentialsFile string, users stores.UserStore) (*FirebaseNotifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase messaging: %w", err)
	}
	return newFirebaseNotifier(client, users), nil
}

func newFirebaseNotifier(sender messageSender, users stores.UserStore) *FirebaseNotifier {
	return &FirebaseNotifier{sender: sender, users: users, logger: logging.Component("push")}
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	if stringMap == nil {
		return nil
	}
	interfaceMap := make(map[string]interface{}, len(stringMap))
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

// BuildPushMessages renders one message per active token.
func BuildPushMessages(tokens []models.UserPushToken, title, body string, data map[string]string) []*messaging.Message {
	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		if !token.Active || token.Token == "" {
			continue
		}
		messages = append(messages, &messaging.Message{
			Notification: &messaging.Notification{Title: title, Body: body},
			APNS: &messaging.APNSConfig{
				FCMOptions: &messaging.APNSFCMOptions{AnalyticsLabel: "wardrobe"},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert:            &messaging.ApsAlert{Title: title, Body: body},
						Sound:            "default",
					},
					CustomData: stringMapToInterfaceMap(data),
				},
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.PriorityHigh,
					ChannelID: "wardrobe-updates",
				},
				Data: data,
			},
			Token: token.Token,
		})
	}
	return messages
}

// Notify pushes to every active device of the user unless they opted out.
// Per-token failures are logged, not returned.
func (n *FirebaseNotifier) Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	user, err := n.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.ReceiveNotifications {
		return nil
	}
	tokens, err := n.users.PushTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("load push tokens: %w", err)
	}
	messages := BuildPushMessages(tokens, title, body, data)
	if len(messages) == 0 {
		return nil
	}

	br, err := n.sender.SendEach(ctx, messages)
	if err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("send push: %w", err)
	}
	if br.FailureCount > 0 {
		for i, resp := range br.Responses {
			if resp == nil || resp.Success {
				continue
			}
			n.logger.Warn().Err(resp.Error).
				Uint("user_id", userID).
				Str("token", messages[i].Token).
				Bool("unregistered", messaging.IsUnregistered(resp.Error)).
				Msg("push failed")
		}
	}
	n.logger.Info().Uint("user_id", userID).Int("sent", br.SuccessCount).Int("failed", br.FailureCount).Msg("push sent")
	return nil
}
