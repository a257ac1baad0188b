package pipeline

// Trace records human-readable step descriptions for one request.
// Append-only; returned alongside the answer and sources.
type Trace struct {
	steps []string
}

func NewTrace() *Trace {
	return &Trace{steps: make([]string, 0, 8)}
}

func (t *Trace) Append(step string) {
	t.steps = append(t.steps, step)
}

// Steps returns a copy so callers cannot mutate the trace.
func (t *Trace) Steps() []string {
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *Trace) Len() int {
	return len(t.steps)
}
