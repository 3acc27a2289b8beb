// Package broadcast provides a generic, in-process publish/subscribe bus
// keyed by topic.
//
// A Bus is created explicitly and passed to its users; it is not a package
// level singleton. Subscribe returns a *Subscription handle that must be
// kept for as long as the subscriber wants messages and released with
// Unsubscribe (or Close) on every exit path:
//
//	q := broadcast.NewQueue[Event](32)
//	sub, err := bus.Subscribe("notification:"+userID, q.Handle)
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
//
//	for {
//	    select {
//	    case msg := <-q.C():
//	        write(msg.Data)
//	    case <-q.Overflow():
//	        return errSlowClient
//	    case <-sub.Done():
//	        return nil
//	    case <-ctx.Done():
//	        return nil
//	    }
//	}
//
// Publish iterates a snapshot of the subscribers, so subscribing or
// unsubscribing concurrently never corrupts an in-flight delivery, and a
// subscription is never invoked after Unsubscribe has returned. Handler
// errors and panics are isolated per subscriber.
//
// Delivery is at most once and only reaches subscribers of this process.
package broadcast
