// Package mongo connects to MongoDB with retries and exposes a health check.
//
// MongoDB is the system of record for notifications, bookings, payments and
// users. Connection and pool settings come from environment variables described
// by Config:
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "tutorhub")
//	if err != nil {
//		return err
//	}
//	probe := mongo.Healthcheck(db.Client())
package mongo
