// Package webhook contains the webhook subscription aggregate.
//
// Subscriptions register an external URL for a lifecycle event type together
// with a shared secret used to sign payloads. The dispatcher mutates the
// success/failure counters after each delivery attempt; the counters are
// best-effort accounting, not an exactness guarantee.
package webhook

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"orderflow/internal/pkg/errs"
)

var (
	// ErrSubscriptionIsNotConstructed is returned when a Subscription was not
	// created through NewSubscription or RestoreSubscription.
	ErrSubscriptionIsNotConstructed = errors.New(
		"Subscription must be created via NewSubscription constructor")
)

// Subscription is an externally registered webhook endpoint.
// Deactivation is an external admin action; the core never deletes
// subscriptions, it only records delivery outcomes.
type Subscription struct {
	id              int64
	url             string
	eventType       string
	secret          string
	isActive        bool
	successCount    int64
	failureCount    int64
	lastTriggeredAt *time.Time

	isConstructed bool
}

// NewSubscription creates an active subscription for the given event type.
// The URL must be absolute http(s) and the secret non-empty (unsigned
// payloads are never sent).
func NewSubscription(id int64, rawURL, eventType, secret string) (*Subscription, error) {
	s := &Subscription{
		isActive:      true,
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setURL(rawURL),
		s.setEventType(eventType),
		s.setSecret(secret),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreSubscription reconstructs a subscription from persistence.
func RestoreSubscription(
	id int64,
	rawURL, eventType, secret string,
	isActive bool,
	successCount, failureCount int64,
	lastTriggeredAt *time.Time,
) (*Subscription, error) {
	s, err := NewSubscription(id, rawURL, eventType, secret)
	if err != nil {
		return nil, err
	}

	s.isActive = isActive
	s.successCount = successCount
	s.failureCount = failureCount
	s.lastTriggeredAt = lastTriggeredAt

	return s, nil
}

// Validate ensures the Subscription was properly constructed.
func (s *Subscription) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSubscriptionIsNotConstructed
	}

	return nil
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() int64 {
	return s.id
}

// URL returns the delivery endpoint.
func (s *Subscription) URL() string {
	return s.url
}

// EventType returns the lifecycle event this subscription listens for.
func (s *Subscription) EventType() string {
	return s.eventType
}

// Secret returns the shared signing secret.
func (s *Subscription) Secret() string {
	return s.secret
}

// IsActive reports whether the subscription receives deliveries.
func (s *Subscription) IsActive() bool {
	return s.isActive
}

// SuccessCount returns the number of successful deliveries recorded.
func (s *Subscription) SuccessCount() int64 {
	return s.successCount
}

// FailureCount returns the number of exhausted delivery attempts recorded.
func (s *Subscription) FailureCount() int64 {
	return s.failureCount
}

// LastTriggeredAt returns when the last successful delivery happened, or nil.
func (s *Subscription) LastTriggeredAt() *time.Time {
	return s.lastTriggeredAt
}

// Matches reports whether this subscription should receive the event.
func (s *Subscription) Matches(eventType string) bool {
	return s.isActive && s.eventType == eventType
}

// Deactivate stops further deliveries to this subscription.
func (s *Subscription) Deactivate() {
	s.isActive = false
}

// RecordSuccess increments the success counter and stamps the trigger time.
func (s *Subscription) RecordSuccess(at time.Time) {
	s.successCount++
	s.lastTriggeredAt = &at
}

// RecordFailure increments the failure counter after retries are exhausted.
func (s *Subscription) RecordFailure() {
	s.failureCount++
}

func (s *Subscription) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("%d is not greater than 0", id))
	}
	s.id = id
	return nil
}

func (s *Subscription) setURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("url", err)
	}
	if !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errs.NewValueIsInvalidErrorWithCause("url",
			fmt.Errorf("%q is not an absolute http(s) URL", rawURL))
	}
	s.url = rawURL
	return nil
}

func (s *Subscription) setEventType(eventType string) error {
	if eventType == "" {
		return errs.NewValueIsRequiredError("eventType")
	}
	s.eventType = eventType
	return nil
}

func (s *Subscription) setSecret(secret string) error {
	if secret == "" {
		return errs.NewValueIsRequiredError("secret")
	}
	s.secret = secret
	return nil
}
