package scanning

// HookPos names the point of a scan at which hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx tells a hook what the scanner just did.
type HookCtx struct {
	Scanner *Scanner
	Pos     *HookPos
	Item    any
	Detail  any
}

// Hook observes a scan. Hooks run synchronously on the scanning goroutine, in
// registration order.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to a Hook. Register it by pointer, since
// function values cannot be compared for duplicates.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f *HookFunc) Func(ctx HookCtx) {
	(*f)(ctx)
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (s *Scanner) AcceptHook(hook Hook) {
	for _, h := range s.hooks {
		if h == hook {
			panic("duplicated hook")
		}
	}

	s.hooks = append(s.hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (s *Scanner) NumHooks() int {
	return len(s.hooks)
}

func (s *Scanner) invokeHook(pos *HookPos, item, detail any) {
	ctx := HookCtx{Scanner: s, Pos: pos, Item: item, Detail: detail}
	for _, h := range s.hooks {
		h.Func(ctx)
	}
}
