// Package middleware wraps a ConversationStore with behavior applied on the
// way to and from storage.
package middleware

import "github.com/nexsupply/nexi/pkg/ports"

// Middleware allows wrapping a ConversationStore to add behavior.
type Middleware func(ports.ConversationStore) ports.ConversationStore

// Chain wraps store so that the first middleware sees calls first.
func Chain(store ports.ConversationStore, mws ...Middleware) ports.ConversationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
