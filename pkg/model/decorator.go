package model

// Decorator enriches a view schema after it has been loaded and before it is
// rendered, e.g. to inject options or defaults from another system.
type Decorator interface {
	Decorate(*ViewSchema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*ViewSchema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(schema *ViewSchema) error {
	return fn(schema)
}
