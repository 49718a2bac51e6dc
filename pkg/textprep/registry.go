package textprep

import "sync"

// StepInfo describes a registered step.
type StepInfo struct {
	Name        string
	Description string
}

// StepOption configures a step at registration time.
type StepOption func(*step)

// WithDescription attaches a one-line description shown by step pickers.
func WithDescription(desc string) StepOption {
	return func(s *step) { s.description = desc }
}

type step struct {
	transform   Transform
	description string
}

// Registry maps step names to transforms. It is safe for concurrent use; in
// practice it is filled once at start and only read afterwards.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]step
	order []string
}

func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]step)}
}

// Register adds or replaces the transform for name. A replaced name keeps
// its original position in Names.
func (r *Registry) Register(name string, t Transform, opts ...StepOption) {
	if t == nil {
		panic("textprep: nil transform registered for " + name)
	}
	s := step{transform: t}
	for _, opt := range opts {
		opt(&s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[name]; !ok {
		r.order = append(r.order, name)
	}
	r.steps[name] = s
}

// Resolve returns the transform registered under name.
func (r *Registry) Resolve(name string) (Transform, error) {
	r.mu.RLock()
	s, ok := r.steps[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &StepNotFoundError{Name: name, Position: -1}
	}
	return s.transform, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.steps[name]
	return ok
}

// Names lists registered step names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Steps lists registered steps with their descriptions in registration order.
func (r *Registry) Steps() []StepInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StepInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, StepInfo{Name: name, Description: r.steps[name].description})
	}
	return out
}

// Validate reports the first name in names that is not registered, with
// its position in the list.
func (r *Registry) Validate(names []string) error {
	_, err := r.resolveAll(names)
	return err
}

type stage struct {
	name      string
	position  int
	transform Transform
}

// resolveAll looks up every name before any record is touched.
func (r *Registry) resolveAll(names []string) ([]stage, error) {
	stages := make([]stage, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, name := range names {
		s, ok := r.steps[name]
		if !ok {
			return nil, &StepNotFoundError{Name: name, Position: i}
		}
		stages[i] = stage{name: name, position: i, transform: s.transform}
	}
	return stages, nil
}
