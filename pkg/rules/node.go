package rules

import (
	"sort"
	"strconv"
	"strings"
)

// Separator splits hierarchical configuration keys.
const Separator = ":"

// Node is one section of a hierarchical configuration tree. Keys compare
// case-insensitively and children keep their first-seen order.
type Node struct {
	key      string
	value    string
	hasValue bool
	children map[string]*Node
	order    []*Node
}

// NewTree returns an empty root node.
func NewTree() *Node {
	return &Node{}
}

// Key returns the last path segment of n as first written.
func (n *Node) Key() string {
	return n.key
}

// Value returns the leaf value of n.
func (n *Node) Value() (string, bool) {
	return n.value, n.hasValue
}

// Children returns the direct children of n in insertion order.
func (n *Node) Children() []*Node {
	return n.order
}

// Set stores value at path, creating intermediate sections.
func (n *Node) Set(path, value string) {
	cur := n
	for _, seg := range splitPath(path) {
		cur = cur.child(seg)
	}
	cur.value = value
	cur.hasValue = true
}

// Lookup returns the section at path or nil. Node itself is a Source.
func (n *Node) Lookup(path string) *Node {
	cur := n
	for _, seg := range splitPath(path) {
		next, ok := cur.children[strings.ToLower(seg)]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func (n *Node) child(seg string) *Node {
	id := strings.ToLower(seg)
	if c, ok := n.children[id]; ok {
		return c
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	c := &Node{key: seg}
	n.children[id] = c
	n.order = append(n.order, c)
	return c
}

// merge copies src into n. Values from src replace those of n.
func (n *Node) merge(src *Node) {
	if src.hasValue {
		n.value = src.value
		n.hasValue = true
	}
	for _, c := range src.order {
		n.child(c.key).merge(c)
	}
}

// listItems returns the children of n ordered by index when every child key
// is a non-negative integer, the way sequences are flattened.
func (n *Node) listItems() ([]*Node, bool) {
	if len(n.order) == 0 {
		return nil, false
	}
	type indexed struct {
		idx  int
		node *Node
	}
	items := make([]indexed, 0, len(n.order))
	for _, c := range n.order {
		idx, err := strconv.Atoi(c.key)
		if err != nil || idx < 0 {
			return nil, false
		}
		items = append(items, indexed{idx, c})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].idx < items[j].idx })

	out := make([]*Node, len(items))
	for i, it := range items {
		out[i] = it.node
	}
	return out, true
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}
