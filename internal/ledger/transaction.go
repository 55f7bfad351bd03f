package ledger

import "fmt"

// Participant is any state holder that can enlist in a transaction. The
// first mutation inside a transaction scope snapshots the participant; the
// snapshot is handed back through ReadSnapshot if the scope aborts.
type Participant interface {
	CreateSnapshot() any
	ReadSnapshot(snapshot any)
}

type txState int

const (
	txOpen txState = iota
	txCommitted
	txAborted
)

type enlistment struct {
	participant Participant
	snapshot    any
}

// Transaction scopes a unit of work over one or more storages. Transactions
// nest strictly LIFO: a child must be closed before its parent is touched
// again, and only the outermost commit makes mutations durable. Using a
// transaction out of order is a programming error and panics.
type Transaction struct {
	parent   *Transaction
	child    *Transaction
	state    txState
	enlisted []enlistment
	seen     map[Participant]struct{}
}

// OpenOuter begins a new top-level transaction.
func OpenOuter() *Transaction {
	return &Transaction{seen: make(map[Participant]struct{})}
}

// OpenNested begins a child transaction under t.
func (t *Transaction) OpenNested() *Transaction {
	t.mustBeUsable("open nested")
	child := &Transaction{parent: t, seen: make(map[Participant]struct{})}
	t.child = child
	return child
}

// Join snapshots the participant the first time it is touched within this
// scope. Joining again in the same scope is a no-op, so the snapshot always
// captures the state at the start of the scope's first mutation.
func (t *Transaction) Join(p Participant) {
	t.mustBeUsable("join")
	if _, ok := t.seen[p]; ok {
		return
	}
	t.seen[p] = struct{}{}
	t.enlisted = append(t.enlisted, enlistment{participant: p, snapshot: p.CreateSnapshot()})
}

// Commit closes the scope keeping its mutations. A nested commit hands the
// scope's enlistments to the parent; a participant the parent already joined
// keeps the parent's earlier snapshot. Only the outermost commit publishes.
func (t *Transaction) Commit() {
	t.mustBeUsable("commit")
	t.state = txCommitted
	if t.parent != nil {
		for _, e := range t.enlisted {
			if _, ok := t.parent.seen[e.participant]; ok {
				continue
			}
			t.parent.seen[e.participant] = struct{}{}
			t.parent.enlisted = append(t.parent.enlisted, e)
		}
		t.parent.child = nil
	}
	t.enlisted = nil
	t.seen = nil
}

// Abort closes the scope rolling back every enlisted participant, including
// enlistments inherited from committed children, in reverse join order.
func (t *Transaction) Abort() {
	t.mustBeUsable("abort")
	t.state = txAborted
	for i := len(t.enlisted) - 1; i >= 0; i-- {
		e := t.enlisted[i]
		e.participant.ReadSnapshot(e.snapshot)
	}
	t.enlisted = nil
	t.seen = nil
	if t.parent != nil {
		t.parent.child = nil
	}
}

// Close aborts the transaction unless it was already committed or aborted.
// Meant for defer, so an early return or panic inside the scope still rolls
// back.
func (t *Transaction) Close() {
	if t.state != txOpen {
		return
	}
	t.Abort()
}

func (t *Transaction) mustBeUsable(op string) {
	if t.state != txOpen {
		panic(fmt.Sprintf("ledger: %s on a closed transaction", op))
	}
	if t.child != nil {
		panic(fmt.Sprintf("ledger: %s while a nested transaction is open", op))
	}
}
