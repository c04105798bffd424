// Package lookup resolves a batch of opaque identifiers against a remote HTTP
// lookup service with bounded concurrency.
//
// A batch loads every identifier, duplicates included, into a shared FIFO
// Queue. Workers pull identifiers, reserve them in the shared Table, take a
// permit from the admission semaphore and perform one GET. The Table doubles
// as the in-flight reservation set: an identifier that is already reserved or
// finalized is skipped without a request, so every distinct identifier is
// requested once unless the service answers 429.
//
// Two engines are available:
//
//   - EngineWorkers: every worker runs the Fetch, Reserve, AcquirePermit,
//     Transmit, Record loop itself and exits the first time it finds the
//     queue empty. A 429 removes the reservation and requeues the identifier
//     immediately, with no delay and no attempt limit.
//   - EngineDispatcher: a single dispatcher owns the queue and the
//     reservation decisions and feeds a fixed worker pool over a channel.
//     Workers park instead of exiting. A 429 is requeued after a jittered
//     backoff (RetryPolicy, Retry-After aware) and finalized as 429 once
//     MaxAttempts is exhausted. The batch completes only when the queue is
//     drained, nothing is in flight and no retry is pending.
//
// Example usage:
//
//	table, err := lookup.Run(ctx, ids, lookup.Config{
//		BaseURL:        "http://localhost/items/",
//		Port:           8080,
//		Authorization:  token,
//		MaxConcurrency: 5,
//	})
//	if err != nil {
//		return err
//	}
//	for _, r := range table.Results() {
//		fmt.Println(r.Payload())
//	}
//
// Every finalized Result renders with Payload in the fixed wire format
//
//	{"id":"<id>","timestamp":<ns>,"status":<code>,"response":<raw body>}
//
// where the body is spliced in verbatim, or "response":null for any status
// other than 200.
package lookup
