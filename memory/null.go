package memory

// Null is a resource that never has memory. It is the upstream of choice
// for a hierarchy that must not grow past its preallocated arenas.
type Null struct {
	resource
}

// NewNull returns a null resource.
func NewNull(name string, opts ...Option) *Null {
	n := &Null{}
	n.init(name, n, opts)
	return n
}

func (n *Null) doAllocate(int, int) []byte    { return nil }
func (n *Null) doDeallocate([]byte, int, int) {}
func (n *Null) doMaxSize() int                { return 0 }
func (n *Null) doReset()                      {}
func (n *Null) doCoalesce() bool              { return false }
