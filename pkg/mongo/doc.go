// Package mongo connects to MongoDB with go.mongodb.org/mongo-driver/v2.
// It backs the document flavour of the notification store.
package mongo
