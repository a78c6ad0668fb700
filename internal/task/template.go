package task

// Template is the prototype every step of an environment starts from.
type Template struct {
	proto *Task
}

// NewTemplate wraps a copy of proto. Later changes to proto do not affect the
// template.
func NewTemplate(proto *Task) *Template {
	if proto == nil {
		proto = &Task{}
	}
	return &Template{proto: proto.DeepCopy()}
}

// Clone returns a fresh, independent task initialised from the prototype.
func (t *Template) Clone() *Task {
	return t.proto.DeepCopy()
}

// Derive returns a new template produced by applying mutate to a clone of
// this one. The receiver is left untouched.
func (t *Template) Derive(mutate func(*Task)) *Template {
	proto := t.Clone()
	if mutate != nil {
		mutate(proto)
	}
	return &Template{proto: proto}
}
