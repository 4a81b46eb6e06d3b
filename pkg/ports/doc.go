/*
Package ports defines the driven ports (interfaces) of the intake service.

These interfaces decouple the conversation engine and the HTTP host from
the storage backends, so the same host runs against memory or Redis.

# Key Interfaces

  - ConversationStore: persists and loads ConversationState by conversation ID.
  - DistributedLocker: provides distributed locking for concurrent access to one conversation.

The analysis pipeline declares its own ports (Estimator, QuotaLimiter,
ResultStore, LimitEventSink) in package analysis.
*/
package ports
