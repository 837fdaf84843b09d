// Package comments rebuilds nested discussion threads from flat rows.
package comments

import (
	"sort"
	"time"
)

// Row is one comment as stored: flat, with an optional parent reference.
type Row struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Node is a comment in the rebuilt tree.
type Node struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId"`
	AuthorTag string    `json:"authorTag"`
	BodyText  string    `json:"bodyText"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	Children  []*Node   `json:"children"`
}

// Tree is the API shape: roots with nested children, plus the number of
// rows received. Orphans lists the ids left out of the tree.
type Tree struct {
	Comments   []*Node `json:"comments"`
	TotalCount int     `json:"totalCount"`
	Orphans    []int64 `json:"-"`
}

// Build links rows into a tree without recursion. Rows are ordered by
// CreatedAt (stable, so equal timestamps keep input order) and children keep
// that order. A row whose parent is absent, is itself, or sits on a parent
// cycle is left out together with its replies, but still counted. A
// repeated id keeps its first row.
func Build(rows []Row) Tree {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	// pass 1: index
	index := make(map[int64]*Node, len(sorted))
	nodes := make([]*Node, 0, len(sorted))
	var orphans []int64
	for _, r := range sorted {
		if _, dup := index[r.ID]; dup {
			orphans = append(orphans, r.ID)
			continue
		}
		n := &Node{
			ID:        r.ID,
			ParentID:  r.ParentID,
			AuthorTag: r.Author,
			BodyText:  r.Body,
			Score:     r.Score,
			CreatedAt: r.CreatedAt,
			Children:  []*Node{},
		}
		index[r.ID] = n
		nodes = append(nodes, n)
	}

	// pass 2: link
	roots := []*Node{}
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok || parent == n {
			orphans = append(orphans, n.ID)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	// nodes on a parent cycle never hang below a root
	reachable := make(map[*Node]bool, len(nodes))
	stack := append([]*Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reachable[n] = true
		stack = append(stack, n.Children...)
	}
	for _, n := range nodes {
		if reachable[n] || n.ParentID == nil {
			continue
		}
		if p, ok := index[*n.ParentID]; ok && p != n {
			orphans = append(orphans, n.ID)
		}
	}

	return Tree{
		Comments:   roots,
		TotalCount: len(rows),
		Orphans:    orphans,
	}
}
