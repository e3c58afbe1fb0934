package ir

// Verify checks the edge symmetry invariant over every node of the arena:
// each forward edge has exactly one matching use and each use has its
// forward edge.
func (a *Arena) Verify() error {
	for i := 1; i < len(a.nodes); i++ {
		id := NodeID(i)
		n := a.nodes[i]

		check := func(role Role, target NodeID) error {
			if target == NoNode {
				return nil
			}
			t := a.node(target)
			if t == nil {
				return newConsistencyError(id, "edge %s points to missing node %s", role, target)
			}
			if !t.users.Contains(Use{Role: role, User: id}) {
				return newConsistencyError(id, "edge %s to %s has no matching use", role, target)
			}
			return nil
		}
		if err := check(FN, n.fn); err != nil {
			return err
		}
		for j, in := range n.inputs {
			if err := check(IN(j), in); err != nil {
				return err
			}
		}

		for _, v := range n.users.Values() {
			u := v.(Use)
			user := a.node(u.User)
			if user == nil || user.slot(u.Role) != id {
				return newConsistencyError(id, "use by %s at %s has no forward edge", u.User, u.Role)
			}
		}
	}
	return nil
}
