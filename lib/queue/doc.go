// Package queue provides MPSC, a bounded lock-free multi-producer single-consumer queue.
//
// The relay uses one MPSC per connection as outbox: packet handlers of any connection push encoded
// frames, a single writer goroutine sends them on the socket.
//
// Features and Guarantees:
//
//   - Lock-Free: producers only use atomic operations
//   - Bounded: Push fails instead of blocking once limit items are pending, slow consumers lose
//     packets instead of growing the queue without bound
//   - O(1) Len (atomic counter)
//   - Close delivers the pending items and then closes the Recv channel
//   - No strict FIFO across producers: items of concurrent producers are ordered by which Push
//     completes first. Items of a single producer keep their order.
package queue
