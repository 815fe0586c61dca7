package typbatch

import "sync"

// Library is the definitions/standard-library table handed to the
// engine, optionally carrying injected input values. The default table
// is a process-wide singleton; constructing a custom instance is the one
// deliberately expensive per-call path, used for single-document,
// input-bearing invocations.
type Library struct {
	inputs map[string]any
}

var (
	defaultLibraryOnce sync.Once
	defaultLibrary     *Library
)

// DefaultLibrary returns the process-wide definitions table with no
// injected inputs. Initialized on first use.
func DefaultLibrary() *Library {
	defaultLibraryOnce.Do(func() {
		defaultLibrary = &Library{}
	})
	return defaultLibrary
}

// NewLibrary builds a standalone definitions table with the given input
// values injected.
func NewLibrary(inputs map[string]any) *Library {
	return &Library{inputs: cloneInputs(inputs)}
}

// Input returns an injected input value by key.
func (l *Library) Input(key string) (any, bool) {
	v, ok := l.inputs[key]
	return v, ok
}

// Inputs returns a copy of the injected input values.
func (l *Library) Inputs() map[string]any {
	return cloneInputs(l.inputs)
}

// merged returns a library with extra inputs layered over this one.
// Returns the receiver unchanged when extra is empty.
func (l *Library) merged(extra map[string]any) *Library {
	if len(extra) == 0 {
		return l
	}
	inputs := cloneInputs(l.inputs)
	if inputs == nil {
		inputs = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		inputs[k] = v
	}
	return &Library{inputs: inputs}
}

func cloneInputs(inputs map[string]any) map[string]any {
	if len(inputs) == 0 {
		return nil
	}
	out := make(map[string]any, len(inputs))
	for k, v := range inputs {
		out[k] = v
	}
	return out
}
