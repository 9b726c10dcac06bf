/*
Package runner owns one DSG connection and feeds its commands into a Session.

Two goroutines run per connection, joined by an errgroup:

  - the receiver reads commands from the stream into an unbounded Queue and
    never touches session state;
  - the sender drains the outbound request channel into the stream, and
    half-closes it when it sees the end-of-stream marker.

The caller's goroutine is the single consumer: Run and HandleOneUpdate pop
commands and dispatch them synchronously, so handler callbacks never run
concurrently.

# Usage

	r := runner.New(session, stream, runner.WithLogger(logger))
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Close(ctx)

	return r.Run(ctx)
*/
package runner
