package domain

import "github.com/google/uuid"

type ObserverID string

// NewObserverID avoids raw uuid calls in adapters.
func NewObserverID() ObserverID {
	return ObserverID(uuid.NewString())
}
