package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// The upstream wraps newer responses in a {success, data, message} envelope
// but still serves older endpoints as bare payloads. Unwrap collapses both
// shapes into the inner payload.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Unwrap returns the payload of an enveloped response, or the body unchanged
// when no envelope is present. A failed envelope (success=false) becomes an
// error carrying the upstream message.
func Unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Not a JSON object at all; leave it to the caller's decoder.
		return body, nil
	}
	if env.Success == nil {
		return body, nil
	}
	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	if len(env.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Data, nil
}

// Subscription is the normalized billing state for a tenant.
type Subscription struct {
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	PeriodEnd time.Time `json:"period_end"`
}

// subscriptionPayload accepts both shapes the upstream has shipped:
// the flat legacy form {plan, status, current_period_end} and the nested
// form {subscription: {plan_name, subscription_status, expires_at}}.
type subscriptionPayload struct {
	Plan             string              `json:"plan"`
	Status           string              `json:"status"`
	CurrentPeriodEnd string              `json:"current_period_end"`
	Subscription     *subscriptionNested `json:"subscription"`
}

type subscriptionNested struct {
	PlanName           string `json:"plan_name"`
	SubscriptionStatus string `json:"subscription_status"`
	ExpiresAt          string `json:"expires_at"`
}

// NormalizeSubscription folds the upstream's two subscription shapes into one.
func NormalizeSubscription(data json.RawMessage) (Subscription, error) {
	var p subscriptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Subscription{}, fmt.Errorf("decode subscription: %w", err)
	}

	out := Subscription{Plan: p.Plan, Status: p.Status}
	end := p.CurrentPeriodEnd
	if p.Subscription != nil {
		if out.Plan == "" {
			out.Plan = p.Subscription.PlanName
		}
		if out.Status == "" {
			out.Status = p.Subscription.SubscriptionStatus
		}
		if end == "" {
			end = p.Subscription.ExpiresAt
		}
	}
	if out.Status == "" {
		return Subscription{}, errors.New("subscription payload has no status")
	}
	if end != "" {
		ts, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return Subscription{}, fmt.Errorf("parse subscription period end: %w", err)
		}
		out.PeriodEnd = ts
	}
	return out, nil
}
