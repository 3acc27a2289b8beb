// Package notifications stores per-user notifications and pushes new ones
// to live subscribers.
//
// A Store persists notifications and scopes every query by owner. Three
// implementations exist: PGStore (pgx), MongoStore (mongo-driver v2) and
// MemoryStore. Service sits on top and is what the rest of the application
// calls to create notifications:
//
//	bus := broadcast.New[notifications.Notification]()
//	svc := notifications.NewService(store, store, bus)
//
//	n, err := svc.Send(ctx, notifications.Content{
//	    Title:   "Project created",
//	    Message: "Your project is ready.",
//	    Type:    notifications.TypeSuccess,
//	    Link:    notifications.Link("/projects/42"),
//	}.For(userID))
//
// Send publishes on Topic(userID) after the insert. SendTx does the insert
// inside a caller-owned transaction and publishes from an after-commit hook.
// Broadcast fans one message out to every user with a single batch insert.
//
// Storage failures are returned as *StorageError, which matches ErrStorage
// and carries a stable message safe to show to clients.
package notifications
