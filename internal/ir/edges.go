package ir

type opKind uint8

const (
	opLink opKind = iota
	opUnlink
)

// edgeOp is one atomic edge primitive: link or unlink the edge
// from --role--> to.
type edgeOp struct {
	kind opKind
	from NodeID
	role Role
	to   NodeID
}

// batch is an ordered list of edge primitives. Higher level operations are
// compositions of batches; apply validates the whole list before it touches
// any node.
type batch []edgeOp

func (b batch) link(from NodeID, role Role, to NodeID) batch {
	return append(b, edgeOp{kind: opLink, from: from, role: role, to: to})
}

func (b batch) unlink(from NodeID, role Role, to NodeID) batch {
	return append(b, edgeOp{kind: opUnlink, from: from, role: role, to: to})
}

type slotKey struct {
	node NodeID
	role Role
}

type useKey struct {
	target NodeID
	use    Use
}

// validate replays b against a shadow of the current edges and reports the
// first primitive that would break consistency.
func (a *Arena) validate(b batch) error {
	slots := make(map[slotKey]NodeID)
	uses := make(map[useKey]bool)

	occupant := func(k slotKey) NodeID {
		if v, ok := slots[k]; ok {
			return v
		}
		return a.node(k.node).slot(k.role)
	}
	hasUse := func(k useKey) bool {
		if v, ok := uses[k]; ok {
			return v
		}
		return a.node(k.target).users.Contains(k.use)
	}

	for _, op := range b {
		if a.node(op.from) == nil {
			return newInvalidNodeError(op.from)
		}
		if a.node(op.to) == nil {
			return newInvalidNodeError(op.to)
		}
		if !op.role.Valid() {
			return newRoleError(op.from, op.role)
		}
		sk := slotKey{node: op.from, role: op.role}
		uk := useKey{target: op.to, use: Use{Role: op.role, User: op.from}}

		switch op.kind {
		case opLink:
			if cur := occupant(sk); cur != NoNode {
				return newConsistencyError(op.from, "link %s: role already occupied by %s", op.role, cur)
			}
			if hasUse(uk) {
				return newConsistencyError(op.to, "link %s: use by %s already recorded", op.role, op.from)
			}
			slots[sk] = op.to
			uses[uk] = true
		case opUnlink:
			if cur := occupant(sk); cur != op.to {
				return newConsistencyError(op.from, "unlink %s: expected %s, found %s", op.role, op.to, cur)
			}
			if !hasUse(uk) {
				return newConsistencyError(op.to, "unlink %s: use by %s not recorded", op.role, op.from)
			}
			slots[sk] = NoNode
			uses[uk] = false
		}
	}
	return nil
}

// apply validates b and then commits it in order.
func (a *Arena) apply(b batch) error {
	if err := a.validate(b); err != nil {
		return err
	}
	for _, op := range b {
		from, to := a.node(op.from), a.node(op.to)
		use := Use{Role: op.role, User: op.from}
		switch op.kind {
		case opLink:
			from.setSlot(op.role, op.to)
			to.users.Add(use)
		case opUnlink:
			from.setSlot(op.role, NoNode)
			to.users.Remove(use)
		}
	}
	return nil
}

// setSuccOps is the minimal diff that makes the edge at role point to
// target. A NoNode target clears the edge.
func (a *Arena) setSuccOps(id NodeID, role Role, target NodeID) (batch, error) {
	n, err := a.mustNode(id)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, newRoleError(id, role)
	}
	if target != NoNode && a.node(target) == nil {
		return nil, newInvalidNodeError(target)
	}
	cur := n.slot(role)
	if cur == target {
		return nil, nil
	}
	var b batch
	if cur != NoNode {
		b = b.unlink(id, role, cur)
	}
	if target != NoNode {
		b = b.link(id, role, target)
	}
	return b, nil
}

// setAppOps retargets the fn edge and every input slot.
func (a *Arena) setAppOps(id NodeID, fn NodeID, inputs []NodeID) (batch, error) {
	b, err := a.setSuccOps(id, FN, fn)
	if err != nil {
		return nil, err
	}
	n := a.node(id)
	width := max(len(n.inputs), len(inputs))
	for i := 0; i < width; i++ {
		cur, next := NoNode, NoNode
		if i < len(n.inputs) {
			cur = n.inputs[i]
		}
		if i < len(inputs) {
			next = inputs[i]
		}
		if cur == next {
			continue
		}
		if next != NoNode && a.node(next) == nil {
			return nil, newInvalidNodeError(next)
		}
		if cur != NoNode {
			b = b.unlink(id, IN(i), cur)
		}
		if next != NoNode {
			b = b.link(id, IN(i), next)
		}
	}
	return b, nil
}

// redirectOps moves every use of id onto target.
func (a *Arena) redirectOps(id NodeID, target NodeID) (batch, error) {
	if _, err := a.mustNode(id); err != nil {
		return nil, err
	}
	if _, err := a.mustNode(target); err != nil {
		return nil, err
	}
	if id == target {
		return nil, nil
	}
	var b batch
	for _, u := range a.Users(id) {
		ops, err := a.setSuccOps(u.User, u.Role, target)
		if err != nil {
			return nil, err
		}
		b = append(b, ops...)
	}
	return b, nil
}

// SetSucc sets or clears the edge of id at role. Input slots past the end
// of the current list are created empty.
func (a *Arena) SetSucc(id NodeID, role Role, target NodeID) error {
	b, err := a.setSuccOps(id, role, target)
	if err != nil {
		return err
	}
	return a.apply(b)
}

// SetApp makes id the application of fn to inputs, replacing its previous
// fn edge and its whole input list.
func (a *Arena) SetApp(id NodeID, fn NodeID, inputs []NodeID) error {
	b, err := a.setAppOps(id, fn, inputs)
	if err != nil {
		return err
	}
	if err := a.apply(b); err != nil {
		return err
	}
	n := a.node(id)
	if len(n.inputs) > len(inputs) {
		n.inputs = n.inputs[:len(inputs)]
	}
	return nil
}

// Redirect moves every user of id onto target, at the same roles. The
// forward edges of id are untouched; it ends with no users.
func (a *Arena) Redirect(id NodeID, target NodeID) error {
	b, err := a.redirectOps(id, target)
	if err != nil {
		return err
	}
	return a.apply(b)
}

// Subsume moves every user of old onto id.
func (a *Arena) Subsume(id NodeID, old NodeID) error {
	return a.Redirect(old, id)
}

// MustSetApp is like SetApp but panics on error.
// Use only for builders and tests.
func (a *Arena) MustSetApp(id NodeID, fn NodeID, inputs ...NodeID) {
	if err := a.SetApp(id, fn, inputs); err != nil {
		panic("MustSetApp: " + err.Error())
	}
}
