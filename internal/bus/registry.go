package bus

import "fmt"

// Registry maps a stable protocol name to its Recognizer constructor.
// Per spec.md's Design Notes, a tagged variant plus a name→constructor
// map is sufficient — no dynamic dispatch beyond the Recognizer
// interface itself is needed.
var Registry = map[string]Constructor{
	"AHB": NewAHBRecognizer,
	"APB": NewAPBRecognizer,
}

// New builds a Recognizer for the named protocol. Adding a new
// protocol recognizer means implementing Recognizer and registering
// its constructor here — nothing else in the pipeline changes.
func New(protocol string, mapping SignalMapping) (Recognizer, error) {
	ctor, ok := Registry[protocol]
	if !ok {
		return nil, fmt.Errorf("bus: unknown protocol %q", protocol)
	}
	return ctor(mapping), nil
}
