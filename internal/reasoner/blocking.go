package reasoner

// isBlocked reports whether n should stop expanding because an ancestor's
// label already subsumes (or, under equality blocking, exactly matches)
// its own — the standard termination device for cyclic/infinite models,
// spec.md §4.4.4.
func isBlocked(g *graph, n *node, strategy BlockingStrategy) (bool, nodeID) {
	for _, anc := range g.ancestors(n) {
		switch strategy {
		case EqualityBlocking:
			if labelsEqual(n, anc) {
				return true, anc.id
			}
		default: // SubsetBlocking
			if labelSubsetOf(n, anc) {
				return true, anc.id
			}
		}
	}
	return false, -1
}

// labelSubsetOf reports whether every concept in a's label also appears in
// b's label.
func labelSubsetOf(a, b *node) bool {
	for k := range a.label {
		if _, ok := b.label[k]; !ok {
			return false
		}
	}
	return true
}

func labelsEqual(a, b *node) bool {
	return labelSubsetOf(a, b) && labelSubsetOf(b, a)
}
