package fulfillment

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/marketbridge/pkg/email"
	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

// EmailNotifier informs the purchaser about lifecycle milestones by email.
// It implements fulfillment.Notifier.
type EmailNotifier struct {
	sender email.Sender
}

// NewEmailNotifier creates a purchaser notifier. Panics on a nil sender to
// fail fast during initialization.
func NewEmailNotifier(sender email.Sender) *EmailNotifier {
	if sender == nil {
		panic("fulfillment: email sender is required")
	}
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) SubscriptionPurchased(ctx context.Context, sub *marketplace.Subscription) error {
	return n.sender.SendEmail(ctx, email.SendParams{
		SendTo:  sub.Purchaser.Email,
		Subject: fmt.Sprintf("Your subscription %q is being set up", sub.Name),
		BodyHTML: fmt.Sprintf(
			"<p>Thanks for your purchase.</p><p>Subscription <strong>%s</strong> (plan %s) is being provisioned. You'll be able to configure it in a moment.</p>",
			sub.Name, sub.PlanID,
		),
		Tag: "subscription-purchased",
	})
}

func (n *EmailNotifier) SubscriptionCancelled(ctx context.Context, sub *marketplace.Subscription) error {
	return n.sender.SendEmail(ctx, email.SendParams{
		SendTo:  sub.Purchaser.Email,
		Subject: fmt.Sprintf("Your subscription %q was cancelled", sub.Name),
		BodyHTML: fmt.Sprintf(
			"<p>Subscription <strong>%s</strong> has been cancelled. No further charges will occur.</p>",
			sub.Name,
		),
		Tag: "subscription-cancelled",
	})
}
