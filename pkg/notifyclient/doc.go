// Package notifyclient is the client side of the notification system.
//
// API talks to the HTTP endpoints, Stream reads the live SSE channel, and
// State keeps a single keyed set of notifications fed by both: polling
// replaces the set, pushes upsert into it. Mutations go through Commands,
// which apply optimistically, call the server, and on failure restore the
// previous state and re-sync.
//
//	api := notifyclient.NewAPI(baseURL, token)
//	state := notifyclient.NewState()
//	syncer := notifyclient.NewSyncer(api, state)
//	go syncer.Run(ctx)
//
//	cmds := notifyclient.NewCommands(api, state, syncer.Resync)
//	_ = cmds.MarkRead(ctx, id)
//
// Views are derived on read: Compact for a header badge and dropdown, Full
// for a paginated page with unread and read tabs.
package notifyclient
