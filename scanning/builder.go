package scanning

// Builder can be used to build a Scanner.
type Builder struct {
	retainValues bool
	hooks        []Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithValueRetention makes the scanner keep every parsed value in the Result,
// in file order. Without it, only the running maximum is kept.
func (b Builder) WithValueRetention() Builder {
	b.retainValues = true
	return b
}

// WithHook registers a hook on the scanner that is built.
func (b Builder) WithHook(hook Hook) Builder {
	hooks := make([]Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build builds the scanner.
func (b Builder) Build() *Scanner {
	s := &Scanner{
		retainValues: b.retainValues,
	}

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	return s
}
