package models

// PendingCandidate is a resolved scheduling decision returned by a peek.
// It is transient: nothing is persisted until the delivery outcome is known,
// and it carries everything commit or skip needs without re-scanning.
type PendingCandidate struct {
	UserID     int64
	Day        string
	SlotIndex  int
	NextCursor int
	CycleID    int64
	Kind       SlotKind
	ItemID     string
}
