// Package redis connects to Redis with retries and exposes a health check.
//
// tutorhub keeps short-lived coordination state in Redis, such as the markers
// that stop a class reminder from being sent twice for the same booking.
package redis
