package services

import (
	"github.com/salary-parser/internal/comments"
	"github.com/salary-parser/internal/metrics"
	"go.uber.org/zap"
)

// CommentService rebuilds discussion threads for the API.
type CommentService struct {
	logger *zap.Logger
}

func NewCommentService(logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{logger: logger}
}

// BuildTree nests rows and reports rows that could not be attached.
func (cs *CommentService) BuildTree(rows []comments.Row) comments.Tree {
	tree := comments.Build(rows)
	if n := len(tree.Orphans); n > 0 {
		metrics.OrphanedCommentsTotal.Add(float64(n))
		cs.logger.Warn("comments left out of tree",
			zap.Int("orphans", n),
			zap.Int("total", tree.TotalCount),
			zap.Int64s("ids", tree.Orphans))
	}
	return tree
}
