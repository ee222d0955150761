package glpi

import "context"

// Async runs call on its own goroutine and returns a channel that receives
// exactly one Outcome and is then closed. The channel is buffered, so the
// goroutine never blocks on a caller that stops listening.
func Async[T any](ctx context.Context, call func(context.Context) Outcome[T]) <-chan Outcome[T] {
	done := make(chan Outcome[T], 1)

	go func() {
		defer close(done)

		done <- call(ctx)
	}()

	return done
}

// Handler receives the terminal outcome of an asynchronous call.
type Handler[T any] struct {
	OnSuccess func(value T)
	OnFailure func(outcome Outcome[T])
}

// Then waits for the single outcome on done and dispatches it to h. It is
// meant to be run on its own goroutine by callers that prefer callbacks.
func Then[T any](done <-chan Outcome[T], h Handler[T]) {
	outcome, ok := <-done
	if !ok {
		return
	}

	if outcome.IsSuccess() {
		if h.OnSuccess != nil {
			h.OnSuccess(outcome.Value)
		}

		return
	}

	if h.OnFailure != nil {
		h.OnFailure(outcome)
	}
}
