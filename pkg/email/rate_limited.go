package email

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

type rateLimitedSender struct {
	next    EmailSender
	limiter *rate.Limiter
}

// NewRateLimitedSender wraps next with a token bucket allowing perSecond
// sends with the given burst. Callers block until a token is available or
// ctx is done.
func NewRateLimitedSender(next EmailSender, perSecond float64, burst int) EmailSender {
	if perSecond <= 0 {
		return next
	}
	return &rateLimitedSender{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1)),
	}
}

func (s *rateLimitedSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return s.next.SendEmail(ctx, params)
}
