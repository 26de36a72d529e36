package ribbon

// Event is a list of handlers called synchronously, in subscription order,
// on the goroutine that raises it.
// The zero value is ready to use.
type Event[T any] struct {
	next     int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a func that removes it again.
func (e *Event[T]) Subscribe(fn func(T)) (cancel func()) {
	e.next++
	id := e.next
	e.handlers = append(e.handlers, subscription[T]{id: id, fn: fn})
	return func() {
		for i, s := range e.handlers {
			if s.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

func (e *Event[T]) emit(v T) {
	// handlers may unsubscribe while we iterate
	hs := e.handlers
	for _, s := range hs {
		s.fn(v)
	}
}
