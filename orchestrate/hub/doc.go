// Package hub provides MessageChannel, a generic buffered channel wrapper
// used to fan out a single event stream to multiple independent
// consumers.
//
// # MessageChannel
//
//	ch := hub.NewMessageChannel[domain.WorkerEvent](ctx, 64)
//	go func() {
//	    event, err := ch.Receive(ctx)
//	    ...
//	}()
//	err := ch.Send(ctx, event)
//
// Send and Receive both respect ctx cancellation as well as the channel's
// own construction context, so a publisher or subscriber can be torn down
// independently of the other. TryReceive offers a non-blocking poll; Close
// is idempotent.
package hub
