package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Invoice emails per customer: a burst of 3, then one every 10 minutes.
var invoiceSendLimit = Limit{Rate: 1.0 / 600, Burst: 3}

// InvoiceSendLimiter throttles outbound invoice emails per customer.
type InvoiceSendLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
}

func NewInvoiceSendLimiter(client *redis.Client, log *zap.Logger) *InvoiceSendLimiter {
	return &InvoiceSendLimiter{
		bucket: NewTokenBucket(client),
		log:    log.Named("ratelimit.invoice_send"),
	}
}

// Allow fails open when redis is unavailable.
func (l *InvoiceSendLimiter) Allow(ctx context.Context, customerID string) (bool, time.Duration) {
	if l == nil || l.bucket == nil {
		return true, 0
	}
	decision, err := l.bucket.Take(ctx, "propbill:send:"+customerID, invoiceSendLimit)
	if err != nil {
		l.log.Warn("invoice send limiter unavailable", zap.String("customer_id", customerID), zap.Error(err))
		return true, 0
	}
	return decision.Allowed, decision.RetryAfter
}
