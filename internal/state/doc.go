// Package state provides a thread-safe snapshot store shared between a single
// writer and any number of readers.
//
// # Overview
//
// The query core owns its mutable state and, after every transition, hands an
// immutable copy to a Store. Readers then either pull the latest value with
// Snapshot or receive every value pushed through a channel obtained from
// Subscribe. The Store is the render boundary's only view of the query.
//
//	Writer (query core):            Readers (UI, watcher):
//	┌──────────────────┐            ┌───────────────────┐
//	│ transition       │            │ store.Snapshot()  │ pull
//	│      ↓           │            │                   │
//	│ store.Publish(v) │───────────→│ <-ch              │ push
//	└──────────────────┘  (mutex)   └───────────────────┘
//
// # Delivery Semantics
//
// Publish never blocks the writer and never drops a value. Each subscriber
// owns a backlog and a goroutine that forwards it to the subscriber's
// channel, so every reader sees every transition in publish order however far
// it lags. The backlog is unbounded; a reader that never drains its channel
// must unsubscribe.
//
// # Immutability
//
// The Store does not copy values. Writers must publish values they will never
// mutate again, and readers must treat received values as read-only. The query
// core satisfies this because results are only ever replaced or merged into a
// fresh value.
//
// # Lifecycle
//
// Close lets each subscription deliver its backlog and then closes the
// channel, so range loops over a subscription see the final snapshot and end
// when the owning query is torn down. Snapshot keeps returning the last value
// after Close.
package state
