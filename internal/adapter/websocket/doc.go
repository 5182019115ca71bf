// Package websocket streams the dashboard feeds to browsers. Each
// connection owns one feed.Manager; its frames are written by a single
// writer goroutine per connection.
package websocket
