package middleware

import (
	"net/http"
	"sync"
	"time"

	"slotbook/pkg/logger"
)

type CustomerExtractor func(r *http.Request) string

// CustomerRateLimiter bounds request bursts per customer phone. It exists to
// keep one hot customer from starving admission capacity for everyone else;
// the booking conflict semantics do not depend on it.
type CustomerRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor CustomerExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewCustomerRateLimiter(limit int, window time.Duration, extractor CustomerExtractor, log *logger.Logger) *CustomerRateLimiter {
	limiter := &CustomerRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CustomerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for customer, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, customer)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CustomerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CustomerRateLimiter) Allow(customer string) bool {
	if customer == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0)
	for _, ts := range rl.requests[customer] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[customer] = valid
		return false
	}

	rl.requests[customer] = append(valid, now)
	return true
}

func CustomerRateLimit(limiter *CustomerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customer := extractCustomer(r, limiter.extractor)

			if customer == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(customer) {
				rejectRateLimited(w, limiter.log, r, customer)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractCustomer(r *http.Request, extractor CustomerExtractor) string {
	if extractor == nil {
		return r.Header.Get("X-Customer-Phone")
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, customer string) {
	log.Warn("Rate limit exceeded",
		"request_id", RequestIDFrom(r.Context()),
		"customer", customer,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultCustomerExtractor(r *http.Request) string {
	return r.Header.Get("X-Customer-Phone")
}
