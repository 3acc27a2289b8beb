// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run listens on the configured address and returns after ctx is cancelled
// or the process receives SIGINT or SIGTERM. Drain hooks fire as soon as
// shutdown starts so long-lived responses can be released; stop hooks fire
// after the server has stopped accepting and serving requests.
package httpserver
