package comments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func id(v int64) *int64 { return &v }

func row(rowID int64, parent *int64, minute int) Row {
	return Row{ID: rowID, ParentID: parent, Author: "u", Body: "b", CreatedAt: t0.Add(time.Duration(minute) * time.Minute)}
}

func TestBuild_OrphanExcludedButCounted(t *testing.T) {
	tree := Build([]Row{
		row(1, nil, 0),
		row(2, id(1), 1),
		row(3, id(99), 2),
	})

	require.Len(t, tree.Comments, 1)
	root := tree.Comments[0]
	assert.Equal(t, int64(1), root.ID)
	require.Len(t, root.Children, 1)
	assert.Equal(t, int64(2), root.Children[0].ID)
	assert.Equal(t, 3, tree.TotalCount)
	assert.Equal(t, []int64{3}, tree.Orphans)
}

func TestBuild_ChildBeforeParentInInput(t *testing.T) {
	// input order is not parent-first; timestamps decide
	tree := Build([]Row{
		row(3, id(1), 5),
		row(2, id(1), 2),
		row(1, nil, 0),
	})

	require.Len(t, tree.Comments, 1)
	children := tree.Comments[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, int64(2), children[0].ID)
	assert.Equal(t, int64(3), children[1].ID)
}

func TestBuild_DeepThreadIsIterative(t *testing.T) {
	const depth = 100_000
	rows := make([]Row, depth)
	rows[0] = row(0, nil, 0)
	for i := 1; i < depth; i++ {
		rows[i] = row(int64(i), id(int64(i-1)), i)
	}

	tree := Build(rows)
	require.Len(t, tree.Comments, 1)

	n, levels := tree.Comments[0], 1
	for len(n.Children) > 0 {
		n = n.Children[0]
		levels++
	}
	assert.Equal(t, depth, levels)
	assert.Empty(t, tree.Orphans)
}

func TestBuild_SelfParentAndCycle(t *testing.T) {
	tree := Build([]Row{
		row(1, nil, 0),
		row(2, id(2), 1),
		row(3, id(4), 2),
		row(4, id(3), 3),
		row(5, id(3), 4),
	})

	require.Len(t, tree.Comments, 1)
	assert.Empty(t, tree.Comments[0].Children)
	assert.Equal(t, 5, tree.TotalCount)
	assert.ElementsMatch(t, []int64{2, 3, 4, 5}, tree.Orphans)
}

func TestBuild_DuplicateIDKeepsFirst(t *testing.T) {
	first := row(1, nil, 0)
	first.Body = "first"
	second := row(1, nil, 1)
	second.Body = "second"

	tree := Build([]Row{first, second})
	require.Len(t, tree.Comments, 1)
	assert.Equal(t, "first", tree.Comments[0].BodyText)
	assert.Equal(t, 2, tree.TotalCount)
}

func TestBuild_Empty(t *testing.T) {
	tree := Build(nil)
	assert.Empty(t, tree.Comments)
	assert.Equal(t, 0, tree.TotalCount)

	out, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{"comments":[],"totalCount":0}`, string(out))
}

func TestBuild_JSONShape(t *testing.T) {
	tree := Build([]Row{row(1, nil, 0), row(2, id(1), 1)})
	out, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded struct {
		Comments []struct {
			ID       int64  `json:"id"`
			ParentID *int64 `json:"parentId"`
			Children []struct {
				ID       int64  `json:"id"`
				ParentID *int64 `json:"parentId"`
			} `json:"children"`
		} `json:"comments"`
		TotalCount int `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Comments, 1)
	assert.Nil(t, decoded.Comments[0].ParentID)
	require.Len(t, decoded.Comments[0].Children, 1)
	assert.Equal(t, int64(1), *decoded.Comments[0].Children[0].ParentID)
	assert.Equal(t, 2, decoded.TotalCount)
}
