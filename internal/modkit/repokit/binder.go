package repokit

// Binder builds a domain repo bound to a specific Queryer. Modules hold a
// Binder and re-bind per transaction so every statement in a Tx shares the
// same connection
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function into a Binder. Handy in tests where the
// repo is a fake and the Queryer is ignored
type BindFunc[T any] func(Queryer) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
