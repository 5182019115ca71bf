// Package feed keeps live dashboard views attached to the spin store.
//
// A Handle owns at most one attachment to a live query. Starting a handle
// that is already attached first stops the previous attachment and waits
// for it to finish, so a feed never has two underlying subscriptions and no
// callback fires after Stop returns. Each attachment runs on its own
// goroutine, which is the only caller of the sink; deliveries per feed are
// therefore strictly ordered.
//
// A Manager owns the named handles of one dashboard activation.
//
// Sinks must not call Start, Stop or any Manager method synchronously;
// doing so deadlocks because those calls wait for the sink's goroutine.
package feed
