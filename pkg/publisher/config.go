package publisher

import (
	"context"
	"strings"
)

// SubscriptionIDPlaceholder is the only templating token in the system.
// Matching is a case-sensitive literal substring match.
const SubscriptionIDPlaceholder = "{subscription-id}"

// Configuration holds the publisher-provided redirect targets for the
// landing flow. URLs may contain SubscriptionIDPlaceholder, substituted with
// the actual subscription ID before redirecting.
type Configuration struct {
	// PurchaseConfirmationURL receives first-time buyers after the purchase
	// event is published.
	PurchaseConfirmationURL string `yaml:"purchase_confirmation_url" json:"purchaseConfirmationUrl"`

	// SubscriptionConfigurationURL receives returning customers with an
	// already-known subscription.
	SubscriptionConfigurationURL string `yaml:"subscription_configuration_url" json:"subscriptionConfigurationUrl"`

	// MarketingPageURL is the fallback for landing requests without a token.
	// When empty, tokenless requests get a 404 instead.
	MarketingPageURL string `yaml:"marketing_page_url" json:"marketingPageUrl"`
}

// Complete reports whether the configuration carries the two redirect
// targets the landing flow cannot work without.
func (c *Configuration) Complete() bool {
	return c != nil && c.PurchaseConfirmationURL != "" && c.SubscriptionConfigurationURL != ""
}

// Store supplies the publisher configuration. Implementations return
// ErrNotConfigured while the publisher has not finished setup; the landing
// flow defers to the setup journey in that case.
type Store interface {
	GetConfiguration(ctx context.Context) (*Configuration, error)
}

// SubstituteSubscriptionID replaces every occurrence of
// SubscriptionIDPlaceholder in url with the given subscription ID. URLs
// without the placeholder are returned unchanged.
func SubstituteSubscriptionID(url, subscriptionID string) string {
	return strings.ReplaceAll(url, SubscriptionIDPlaceholder, subscriptionID)
}
