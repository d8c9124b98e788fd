// Package likes implements the optimistic like toggle of a post.
package likes

// Phase tells whether a value was predicted locally or confirmed by the backend.
type Phase int

const (
	Confirmed Phase = iota
	Predicted
)

func (p Phase) String() string {
	if p == Predicted {
		return "predicted"
	}
	return "confirmed"
}

// Optimistic is a value that may be a local prediction. A predicted value
// carries the value it replaced, so a failed mutation can be undone.
type Optimistic[T any] struct {
	Value    T
	Phase    Phase
	previous T
}

// Settled wraps a value already confirmed by the backend.
func Settled[T any](v T) Optimistic[T] {
	return Optimistic[T]{Value: v, Phase: Confirmed}
}

// Predict replaces the value with next and remembers the current one.
func (o Optimistic[T]) Predict(next T) Optimistic[T] {
	return Optimistic[T]{Value: next, Phase: Predicted, previous: o.Value}
}

// Confirm replaces the value with the one the backend returned.
func (o Optimistic[T]) Confirm(v T) Optimistic[T] {
	return Settled(v)
}

// Rollback restores the value captured by Predict. Confirmed values are
// returned unchanged.
func (o Optimistic[T]) Rollback() Optimistic[T] {
	if o.Phase != Predicted {
		return o
	}
	return Settled(o.previous)
}
