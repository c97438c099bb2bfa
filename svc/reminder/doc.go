// Package reminder emits class reminders for confirmed bookings and sweeps
// old read notifications.
//
// Four tasks are registered on a schedule.Scheduler:
//
//	every 15 minutes   1h reminder when the class starts in (0.8h, 1.2h]
//	hourly at :00      1h reminder when the class starts in (45m, 75m]
//	daily at 09:00     24h reminder for every confirmed booking dated tomorrow
//	Sunday at 02:00    delete read notifications older than 30 days
//
// The two 1h windows overlap, so without a Guard a booking can receive more
// than one 1h reminder. A Guard records a marker per booking and lead time
// and suppresses repeats while the marker lives.
package reminder
