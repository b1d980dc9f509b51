package tracers

type Signature struct {
	Name    string
	Params  []string
	DefLine int
}

// Signatures caches the signatures of definition lines seen during a run,
// keyed by function name. It belongs to the execution goroutine.
type Signatures struct {
	items map[string]Signature
}

func NewSignatures() *Signatures {
	return &Signatures{
		items: make(map[string]Signature),
	}
}

func (s *Signatures) Put(sig Signature) {
	s.items[sig.Name] = sig
}

func (s *Signatures) Get(name string) (Signature, bool) {
	sig, ok := s.items[name]
	return sig, ok
}
