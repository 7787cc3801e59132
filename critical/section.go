package critical

// Section is a scoped critical section. The zero value is inert.
type Section struct {
	d    *Domain
	prev Status
	open bool
}

// Enter enters the domain and returns a section that restores the prior
// state on Exit.
func (d *Domain) Enter() Section {
	return Section{d: d, prev: d.Disable(), open: true}
}

// Exit restores the state recorded by Enter. Calling Exit twice is a no-op.
func (s *Section) Exit() {
	if !s.open {
		return
	}
	s.open = false
	s.d.Restore(s.prev)
}

// Prior returns the status the domain had before the section was entered.
func (s *Section) Prior() Status { return s.prev }
