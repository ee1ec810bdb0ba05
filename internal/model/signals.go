package model

// SignalSet maps signal names to boolean facts about the current run. It is
// assembled by the app before the pipeline starts and treated as read-only
// for the duration of the run.
//
// Why fail-closed?
//
// A condition name that is absent from the set is treated as false, never
// as an error. Gating flags exist to keep expensive work from running when
// it isn't needed; an unrecognized flag silently running that work would
// invert the whole point of the gate. Skipping is always the safe outcome,
// and the report makes the skip visible to the operator.
type SignalSet map[string]bool

// Satisfies reports whether every named condition maps to true in the set.
// An empty condition list is vacuously satisfied.
func (s SignalSet) Satisfies(conditions []string) bool {
	for _, name := range conditions {
		if !s[name] {
			return false
		}
	}
	return true
}

// Merge returns a new SignalSet with entries from overlay written over the
// receiver. Neither input is mutated.
func (s SignalSet) Merge(overlay SignalSet) SignalSet {
	merged := make(SignalSet, len(s)+len(overlay))
	for name, value := range s {
		merged[name] = value
	}
	for name, value := range overlay {
		merged[name] = value
	}
	return merged
}
