package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
)

// MemberSource resolves the user ids belonging to a group.
type MemberSource interface {
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// SubscriptionSource resolves push subscriptions for a set of users.
type SubscriptionSource interface {
	ListForUsers(ctx context.Context, userIDs []string) ([]models.Subscription, error)
}

// Delivery records the outcome of one recipient dispatch. Each delivery
// is independent: a failure never aborts the rest of the batch.
type Delivery struct {
	SubscriptionID string
	UserID         string
	Err            error
	Expired        bool
}

// Notifier fans one logical event out as individual deliveries to every
// subscribed device of a group's members, excluding the originator.
type Notifier struct {
	members MemberSource
	subs    SubscriptionSource
	sender  Sender
	logger  *slog.Logger
}

// NewNotifier wires a Notifier from its collaborators.
func NewNotifier(members MemberSource, subs SubscriptionSource, sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{members: members, subs: subs, sender: sender, logger: logger}
}

// SnapPosted notifies every member of the group except the uploader that
// a new snap was posted. It returns one Delivery per subscription
// attempted; delivery errors are recorded, not propagated.
func (n *Notifier) SnapPosted(ctx context.Context, uploaderID, uploaderUsername, groupID, message string) ([]Delivery, error) {
	ctx, span := logging.StartSpan(ctx, "push.snap_posted")
	defer span.End()

	memberIDs, err := n.members.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("resolve group members: %w", err)
	}

	recipients := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != uploaderID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	subs, err := n.subs.ListForUsers(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("resolve subscriptions: %w", err)
	}

	payload := Payload{
		Title: fmt.Sprintf("%s posted a snap!", uploaderUsername),
		Body:  message,
	}

	deliveries := make([]Delivery, 0, len(subs))
	for _, sub := range subs {
		delivery := Delivery{SubscriptionID: sub.ID, UserID: sub.UserID}

		if err := n.sender.Send(ctx, sub, payload); err != nil {
			delivery.Err = err
			delivery.Expired = errors.Is(err, ErrExpired)
			n.logger.Warn("push delivery failed",
				"subscriptionId", sub.ID,
				"userId", sub.UserID,
				"expired", delivery.Expired,
				"error", err,
			)
		}

		deliveries = append(deliveries, delivery)
	}

	return deliveries, nil
}
