package oinc

import (
	"strconv"
	"time"

	"IntSentry/internal/model"
)

// Counter is the per-flow state held at a leaf of the tracking tree.
type Counter struct {
	Count       uint64
	WindowStart time.Time
	PPS         float64
	Attack      bool // sticky once set
}

// node is one level of the lookup tree. Nodes are addressed by index into
// the arena, so growing the arena never invalidates a reference.
type node struct {
	children map[string]int
	leaf     *Counter
}

// Tree tracks flows along the path mac → src IP → dst IP → dst port →
// packet size. Entries are never evicted; memory grows with the number of
// distinct paths observed.
type Tree struct {
	nodes  []node
	leaves int
}

// NewTree creates a tree holding only the root.
func NewTree() *Tree {
	return &Tree{nodes: []node{{children: make(map[string]int)}}}
}

// pathOf orders the record's fields into the tree's lookup path. Packet
// length is the final discriminant, so same-flow packets of different sizes
// land on distinct leaves.
func pathOf(rec *model.FlowRecord) [5]string {
	return [5]string{
		rec.DevMAC,
		rec.DevAddr.String(),
		rec.DstAddr.String(),
		strconv.Itoa(int(rec.DstPort)),
		strconv.Itoa(rec.PacketLen),
	}
}

// Observe walks the record's path, creating missing levels as it descends.
// It returns the leaf counter and whether the full path already existed; a
// fresh leaf starts its window at now with the creating packet counted.
func (t *Tree) Observe(rec *model.FlowRecord, now time.Time) (*Counter, bool) {
	existing := true
	cur := 0
	for _, key := range pathOf(rec) {
		idx, ok := t.nodes[cur].children[key]
		if !ok {
			t.nodes = append(t.nodes, node{children: make(map[string]int)})
			idx = len(t.nodes) - 1
			t.nodes[cur].children[key] = idx
			existing = false
		}
		cur = idx
	}
	if t.nodes[cur].leaf == nil {
		t.nodes[cur].leaf = &Counter{Count: 1, WindowStart: now}
		existing = false
		t.leaves++
	}
	return t.nodes[cur].leaf, existing
}

// Leaves returns the number of tracked flows.
func (t *Tree) Leaves() int { return t.leaves }

// Walk visits every leaf counter. Diagnostic use only.
func (t *Tree) Walk(fn func(c *Counter)) {
	for i := range t.nodes {
		if t.nodes[i].leaf != nil {
			fn(t.nodes[i].leaf)
		}
	}
}
