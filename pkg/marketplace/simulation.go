package marketplace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimulationConfig customizes the subscriptions synthesized by the
// simulation client. Zero values fall back to generated defaults.
type SimulationConfig struct {
	DefaultOfferID   string `env:"SIMULATION_OFFER_ID" envDefault:"sim-offer"`
	DefaultPlanID    string `env:"SIMULATION_PLAN_ID" envDefault:"sim-plan"`
	BeneficiaryEmail string `env:"SIMULATION_BENEFICIARY_EMAIL" envDefault:"beneficiary@example.test"`
	PurchaserEmail   string `env:"SIMULATION_PURCHASER_EMAIL" envDefault:"purchaser@example.test"`
}

// SimulationClient is the in-memory Client used in test/simulation
// deployments. It synthesizes subscriptions on demand instead of calling the
// marketplace, and records every operation so notifications can still be
// verified against an operation ledger during local testing.
type SimulationClient struct {
	mu            sync.RWMutex
	config        SimulationConfig
	subscriptions map[string]*Subscription
	operations    map[string]*SubscriptionOperation // keyed subscriptionID "/" operationID
	tokens        map[string]string                 // token -> subscription ID
	now           func() time.Time
}

// NewSimulationClient creates an empty simulation client.
func NewSimulationClient(cfg SimulationConfig) *SimulationClient {
	if cfg.DefaultOfferID == "" {
		cfg.DefaultOfferID = "sim-offer"
	}
	if cfg.DefaultPlanID == "" {
		cfg.DefaultPlanID = "sim-plan"
	}
	if cfg.BeneficiaryEmail == "" {
		cfg.BeneficiaryEmail = "beneficiary@example.test"
	}
	if cfg.PurchaserEmail == "" {
		cfg.PurchaserEmail = "purchaser@example.test"
	}

	return &SimulationClient{
		config:        cfg,
		subscriptions: make(map[string]*Subscription),
		operations:    make(map[string]*SubscriptionOperation),
		tokens:        make(map[string]string),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SynthesizeSubscription fabricates a pending subscription with generated
// defaults and returns it together with a resolvable token. Caller-supplied
// name and plan override the generated ones when non-empty.
func (c *SimulationClient) SynthesizeSubscription(name, planID string) (*Subscription, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	if name == "" {
		name = "Simulated subscription " + id[:8]
	}
	if planID == "" {
		planID = c.config.DefaultPlanID
	}

	now := c.now()
	seats := int64(1)
	sub := &Subscription{
		ID:           id,
		Name:         name,
		OfferID:      c.config.DefaultOfferID,
		PlanID:       planID,
		SeatQuantity: &seats,
		Status:       StatusPendingActivation,
		IsTest:       true,
		Term: Term{
			StartDate: now,
			EndDate:   now.AddDate(0, 1, 0),
			Unit:      TermUnitMonthly,
		},
		Beneficiary: UserInfo{
			UserID:          uuid.NewString(),
			Email:           c.config.BeneficiaryEmail,
			ObjectID:        uuid.NewString(),
			DirectoryTenant: uuid.NewString(),
		},
		Purchaser: UserInfo{
			UserID:          uuid.NewString(),
			Email:           c.config.PurchaserEmail,
			ObjectID:        uuid.NewString(),
			DirectoryTenant: uuid.NewString(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	token := uuid.NewString()
	c.subscriptions[id] = sub
	c.tokens[token] = id

	cp := *sub
	return &cp, token
}

// RecordOperation stores an operation in the simulated ledger so a webhook
// notification referencing it verifies successfully.
func (c *SimulationClient) RecordOperation(op SubscriptionOperation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op.Timestamp.IsZero() {
		op.Timestamp = c.now()
	}
	c.operations[op.SubscriptionID+"/"+op.OperationID] = &op
}

func (c *SimulationClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidArgument)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	sub, ok := c.subscriptions[subscriptionID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (c *SimulationClient) ResolveToken(ctx context.Context, token string) (*Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.tokens[token]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	cp := *c.subscriptions[id]
	return &cp, nil
}

func (c *SimulationClient) ActivateSubscription(ctx context.Context, subscriptionID, planID string) error {
	if subscriptionID == "" {
		return fmt.Errorf("%w: subscription ID is required", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subscriptions[subscriptionID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	sub.Status = StatusActive
	if planID != "" {
		sub.PlanID = planID
	}
	sub.UpdatedAt = c.now()
	return nil
}

func (c *SimulationClient) GetOperation(ctx context.Context, subscriptionID, operationID string) (*SubscriptionOperation, error) {
	if subscriptionID == "" || operationID == "" {
		return nil, fmt.Errorf("%w: subscription ID and operation ID are required", ErrInvalidArgument)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	op, ok := c.operations[subscriptionID+"/"+operationID]
	if !ok {
		return nil, ErrOperationNotFound
	}
	cp := *op
	return &cp, nil
}

func (c *SimulationClient) UpdateOperationStatus(ctx context.Context, subscriptionID, operationID string, success bool) error {
	if subscriptionID == "" || operationID == "" {
		return fmt.Errorf("%w: subscription ID and operation ID are required", ErrInvalidArgument)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.operations[subscriptionID+"/"+operationID]; !ok {
		return ErrOperationNotFound
	}
	return nil
}
