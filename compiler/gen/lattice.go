package gen

import "strconv"

// State is one builder state of the partial-key lattice: the
// specialization of the generated key type with the first Index
// components populated. A table with N key fields has N+1 states; the
// public builder API reaches exactly these prefix states and no others.
type State struct {
	// Index is the number of populated leading slots.
	Index int
	// TypeName is the generated Go type name of the state. The terminal
	// state is the key type itself; earlier states append the state
	// index to it.
	TypeName string
	// Populated holds the key fields of the populated slots, in
	// primary-key index order.
	Populated []*Field
	// Next is the field that must be supplied to advance to the
	// following state. Nil on the terminal state: the method that would
	// advance past the complete key does not exist.
	Next *Field
}

// Terminal reports if the state is the complete key.
func (s State) Terminal() bool { return s.Next == nil }

// PkLattice computes the builder states of the table's key type, from
// fully unset to complete. The caller must have validated the table:
// the lattice of a keyless table is meaningless.
func (t *Table) PkLattice() []State {
	pks := t.PkFields()
	states := make([]State, len(pks)+1)
	for k := 0; k <= len(pks); k++ {
		s := State{
			Index:     k,
			TypeName:  t.PkType + strconv.Itoa(k),
			Populated: pks[:k],
		}
		if k == len(pks) {
			s.TypeName = t.PkType
		} else {
			s.Next = pks[k]
		}
		states[k] = s
	}
	return states
}
