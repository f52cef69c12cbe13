// Package skiplist implements the book's price-level side index: a
// probabilistic skip list keyed on a numeric sort key, with a fixed
// maximum of 16 levels and per-level promotion probability 0.5.
//
// Best-price access (First) is O(1); Upsert/Delete are expected O(log n).
// Promotion draws come from a caller-supplied deterministic prng.Stream so
// that node height, and therefore the exact shape of the list, is
// reproducible across runs given the same sequence of inserts, which is
// what makes replay (internal/commandlog) byte-identical to the live run.
package skiplist

import "github.com/abdoElHodaky/clobsim/internal/prng"

const (
	maxLevel    = 16
	promoteProb = 0.5
)

type node struct {
	key   float64
	value interface{}
	next  []*node
}

// SkipList is an ordered map from float64 sort-key to arbitrary value. The
// book computes the sort key per side (price for asks, -price for bids) so
// First always returns the best opposite level; the skip list itself never
// reasons about buy/sell.
type SkipList struct {
	head   *node
	level  int
	size   int
	rng    *prng.Stream
}

// New constructs an empty SkipList. rng drives level promotion and must be
// derived independently per side (see prng.Stream.Derive) to keep bid and
// ask shapes from correlating.
func New(rng *prng.Stream) *SkipList {
	return &SkipList{
		head:  &node{next: make([]*node, maxLevel)},
		level: 1,
		rng:   rng,
	}
}

// Len returns the number of entries.
func (s *SkipList) Len() int { return s.size }

// Get retrieves the value stored at key. ok is false if key is absent.
//
// Time complexity: O(log n) expected.
func (s *SkipList) Get(key float64) (value interface{}, ok bool) {
	cur := s.head
	for lvl := s.level - 1; lvl >= 0; lvl-- {
		for cur.next[lvl] != nil && cur.next[lvl].key < key {
			cur = cur.next[lvl]
		}
	}
	cand := cur.next[0]
	if cand != nil && cand.key == key {
		return cand.value, true
	}
	return nil, false
}

// Upsert inserts a new entry at key, or replaces the value of an existing
// one. Returns true if a new entry was created.
//
// Time complexity: O(log n) expected.
func (s *SkipList) Upsert(key float64, value interface{}) bool {
	update := make([]*node, maxLevel)
	cur := s.head
	for lvl := s.level - 1; lvl >= 0; lvl-- {
		for cur.next[lvl] != nil && cur.next[lvl].key < key {
			cur = cur.next[lvl]
		}
		update[lvl] = cur
	}
	if existing := cur.next[0]; existing != nil && existing.key == key {
		existing.value = value
		return false
	}

	newLevel := s.randomLevel()
	if newLevel > s.level {
		for lvl := s.level; lvl < newLevel; lvl++ {
			update[lvl] = s.head
		}
		s.level = newLevel
	}

	n := &node{key: key, value: value, next: make([]*node, newLevel)}
	for lvl := 0; lvl < newLevel; lvl++ {
		n.next[lvl] = update[lvl].next[lvl]
		update[lvl].next[lvl] = n
	}
	s.size++
	return true
}

// Delete removes the entry at key. Returns true if an entry was removed.
//
// Time complexity: O(log n) expected.
func (s *SkipList) Delete(key float64) bool {
	update := make([]*node, maxLevel)
	cur := s.head
	for lvl := s.level - 1; lvl >= 0; lvl-- {
		for cur.next[lvl] != nil && cur.next[lvl].key < key {
			cur = cur.next[lvl]
		}
		update[lvl] = cur
	}
	target := cur.next[0]
	if target == nil || target.key != key {
		return false
	}
	for lvl := 0; lvl < s.level; lvl++ {
		if update[lvl].next[lvl] != target {
			break
		}
		update[lvl].next[lvl] = target.next[lvl]
	}
	for s.level > 1 && s.head.next[s.level-1] == nil {
		s.level--
	}
	s.size--
	return true
}

// First returns the entry with the minimum key, and true if the list is
// non-empty. This is the book's best-opposite-price lookup.
//
// Time complexity: O(1).
func (s *SkipList) First() (key float64, value interface{}, ok bool) {
	n := s.head.next[0]
	if n == nil {
		return 0, nil, false
	}
	return n.key, n.value, true
}

// Entries returns up to limit (key, value) pairs in ascending key order.
// limit <= 0 means unbounded.
func (s *SkipList) Entries(limit int) []Entry {
	var out []Entry
	for n := s.head.next[0]; n != nil; n = n.next[0] {
		out = append(out, Entry{Key: n.key, Value: n.value})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Entry is one (key, value) pair returned by Entries.
type Entry struct {
	Key   float64
	Value interface{}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Bool(promoteProb) {
		lvl++
	}
	return lvl
}
