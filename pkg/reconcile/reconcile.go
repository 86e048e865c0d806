package reconcile

import (
	"fmt"
	"sort"
)

// Op is the edit-script operation type.
type Op uint8

const (
	OpInsert Op = iota // Key appears only in the target sequence
	OpRemove           // Key appears only in the source sequence
	OpMove             // Key present in both, position changed
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpMove:
		return "Move"
	default:
		return "Unknown"
	}
}

// Move is one list edit. At is the position for inserts and removes; From
// and To are the positions for moves. Positions are valid against a working
// copy of the list that has every earlier move in the script already
// applied, so callers can replay the script against their own child array.
type Move struct {
	Op   Op
	Key  string
	At   int
	From int
	To   int
}

// String returns a compact debug form of the move.
func (m Move) String() string {
	switch m.Op {
	case OpInsert:
		return fmt.Sprintf("Insert(%s@%d)", m.Key, m.At)
	case OpRemove:
		return fmt.Sprintf("Remove(%s@%d)", m.Key, m.At)
	case OpMove:
		return fmt.Sprintf("Move(%s %d->%d)", m.Key, m.From, m.To)
	default:
		return "Unknown"
	}
}

// PositionalKey returns the stable key assigned to an unkeyed child at
// index i, so unkeyed lists degrade to index-based diffing.
func PositionalKey(i int) string {
	return fmt.Sprintf("%05d", i)
}

type indexedKey struct {
	key string
	idx int
}

// CalculateMoves returns the ordered edit script that transforms source
// into target. Keys must be unique within each sequence. The script is
// removals first (highest source index first), then insertions (ascending
// target index), then the smaller of a forward or reversed alignment pass;
// on a tie the alignment that leaves favored stationary wins, so a node the
// user is interacting with is not relocated needlessly.
func CalculateMoves(source, target []string, favored string) []Move {
	removed, inserted := symmetricDifference(source, target)

	moves := make([]Move, 0, len(removed)+len(inserted))

	// Removals highest original index first, so earlier removals don't
	// invalidate later indices.
	working := make([]string, len(source))
	copy(working, source)
	sort.Slice(removed, func(i, j int) bool { return removed[i].idx > removed[j].idx })
	for _, r := range removed {
		working = append(working[:r.idx], working[r.idx+1:]...)
		moves = append(moves, Move{Op: OpRemove, Key: r.key, At: r.idx})
	}

	sort.Slice(inserted, func(i, j int) bool { return inserted[i].idx < inserted[j].idx })
	for _, ins := range inserted {
		working = insertAt(working, ins.idx, ins.key)
		moves = append(moves, Move{Op: OpInsert, Key: ins.key, At: ins.idx})
	}

	if equalKeys(working, target) {
		return moves
	}

	forward := alignForward(working, target)
	reversed := alignReversed(working, target)

	chosen := forward
	switch {
	case len(reversed) < len(forward):
		chosen = reversed
	case len(reversed) == len(forward) && favored != "":
		if movesKey(forward, favored) && !movesKey(reversed, favored) {
			chosen = reversed
		}
	}

	return append(moves, chosen...)
}

// symmetricDifference is a merge scan over both key sequences sorted by
// key value, carrying original indices. It is not an LCS: keys present in
// both sequences are consumed as unchanged regardless of position.
func symmetricDifference(source, target []string) (removed, inserted []indexedKey) {
	ss := sortedKeys(source)
	st := sortedKeys(target)

	i, j := 0, 0
	for i < len(ss) && j < len(st) {
		switch {
		case ss[i].key == st[j].key:
			i++
			j++
		case ss[i].key < st[j].key:
			removed = append(removed, ss[i])
			i++
		default:
			inserted = append(inserted, st[j])
			j++
		}
	}
	for ; i < len(ss); i++ {
		removed = append(removed, ss[i])
	}
	for ; j < len(st); j++ {
		inserted = append(inserted, st[j])
	}
	return removed, inserted
}

func sortedKeys(keys []string) []indexedKey {
	out := make([]indexedKey, len(keys))
	for i, k := range keys {
		out[i] = indexedKey{key: k, idx: i}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].key < out[b].key })
	return out
}

// alignForward walks target positions left to right, moving the expected
// key into place when the working copy disagrees.
func alignForward(working, target []string) []Move {
	work := make([]string, len(working))
	copy(work, working)

	var moves []Move
	for to := 0; to < len(target); to++ {
		if work[to] == target[to] {
			continue
		}
		// Positions before to are already aligned, so the key sits later.
		from := indexOf(work, target[to], to+1)
		if from < 0 {
			continue
		}
		work = append(work[:from], work[from+1:]...)
		work = insertAt(work, to, target[to])
		moves = append(moves, Move{Op: OpMove, Key: target[to], From: from, To: to})
	}
	return moves
}

// alignReversed is the same alignment scanned right to left on a fresh
// copy. A single trailing item out of place is often cheaper this way.
func alignReversed(working, target []string) []Move {
	work := make([]string, len(working))
	copy(work, working)

	var moves []Move
	for to := len(target) - 1; to >= 0; to-- {
		if work[to] == target[to] {
			continue
		}
		from := indexOf(work, target[to], 0)
		if from < 0 {
			continue
		}
		work = append(work[:from], work[from+1:]...)
		work = insertAt(work, to, target[to])
		moves = append(moves, Move{Op: OpMove, Key: target[to], From: from, To: to})
	}
	return moves
}

func movesKey(moves []Move, key string) bool {
	for _, m := range moves {
		if m.Op == OpMove && m.Key == key {
			return true
		}
	}
	return false
}

func indexOf(keys []string, key string, start int) int {
	for i := start; i < len(keys); i++ {
		if keys[i] == key {
			return i
		}
	}
	return -1
}

func insertAt(keys []string, at int, key string) []string {
	if at >= len(keys) {
		return append(keys, key)
	}
	keys = append(keys, "")
	copy(keys[at+1:], keys[at:])
	keys[at] = key
	return keys
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
