// Package logger builds *slog.Logger instances for tutorhub services and
// provides attribute helpers that keep structured log keys consistent
// across packages.
//
// A logger is created with New and a set of options:
//
//	log := logger.New(
//		logger.WithEnvironment("production", "tutorhub"),
//		logger.WithContextValue("request_id", requestIDKey),
//	)
//
// Development environments log text at DEBUG level, staging and production log
// JSON at INFO level. Context extractors registered through WithContextValue or
// WithContextExtractors are evaluated for every record, so request-scoped values
// end up in the output without passing them to each call.
//
// Attribute helpers such as Error, UserID, NotificationID and BookingID return
// an empty slog.Attr for nil input, which slog drops silently.
package logger
