package launch

import "fmt"

// QoSProfile is an opaque transport profile declared alongside the
// processes. The resolver validates and carries it; the processes apply it.
type QoSProfile struct {
	Name        string `json:"name" yaml:"name"`
	Reliability string `json:"reliability" yaml:"reliability"`
	Durability  string `json:"durability" yaml:"durability"`
	Depth       int    `json:"depth" yaml:"depth"`
}

func (q QoSProfile) validate() error {
	switch q.Reliability {
	case "", "reliable", "best_effort":
	default:
		return fmt.Errorf("qos %q: unknown reliability %q", q.Name, q.Reliability)
	}
	switch q.Durability {
	case "", "volatile", "transient_local":
	default:
		return fmt.Errorf("qos %q: unknown durability %q", q.Name, q.Durability)
	}
	if q.Depth < 0 {
		return fmt.Errorf("qos %q: depth must not be negative", q.Name)
	}
	return nil
}
