// Package email sends transactional HTML email.
//
// EmailSender is the single transport abstraction. Implementations:
//
//   - NewPostmarkClient delivers through the Postmark API.
//   - NewDevSender writes each message to a directory as .html + .json files,
//     for local development.
//   - NewRateLimitedSender wraps another sender with a token-bucket limit so
//     bursts (for example the daily reminder run) stay under provider quotas.
//
// Render turns a templ.Component into the HTML body string.
package email
