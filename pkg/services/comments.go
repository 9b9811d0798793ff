package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
)

// Comments manages the per-task reply trees. Comments are immutable once created except
// for their replies growing. Comments on completed or cancelled workflows are allowed.
type Comments struct {
	*core

	notifications *Notifications
}

// NewComments creates a new comment service.
func NewComments(opts Options) *Comments {
	c := newCore(opts)

	return &Comments{core: c, notifications: &Notifications{core: c}}
}

// AddComment appends a top-level comment to a task.
func (c *Comments) AddComment(ctx context.Context, workflowID, taskID, text string, author models.CommentAuthor) (*models.Comment, error) {
	return c.add(ctx, workflowID, taskID, "", text, author)
}

// AddReply appends a reply under parentCommentID, which may sit at any depth.
func (c *Comments) AddReply(ctx context.Context, workflowID, taskID, parentCommentID, text string, author models.CommentAuthor) (*models.Comment, error) {
	return c.add(ctx, workflowID, taskID, parentCommentID, text, author)
}

// List returns the task's comment tree.
func (c *Comments) List(ctx context.Context, workflowID, taskID string) ([]*models.Comment, error) {
	_, task, err := c.loadTask(ctx, workflowID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Comments == nil {
		return []*models.Comment{}, nil
	}

	return task.Comments, nil
}

func (c *Comments) add(ctx context.Context, workflowID, taskID, parentID, text string, author models.CommentAuthor) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("AddComment", CodeEmptyComment, "comment text cannot be empty", ErrEmptyComment)
	}

	w, task, err := c.loadTask(ctx, workflowID, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        c.newID(),
		Text:      text,
		Author:    author,
		CreatedAt: c.now(),
		Replies:   []*models.Comment{},
	}

	if parentID == "" {
		task.Comments = append(task.Comments, comment)
	} else {
		parent := models.FindComment(task.Comments, parentID)
		if parent == nil {
			return nil, fmt.Errorf("%w: %s on task %s", ErrCommentNotFound, parentID, taskID)
		}

		parent.Replies = append(parent.Replies, comment)
	}

	err = c.saveWorkflow(ctx, w, events.ChangeUpdated, author.ID, taskID)
	if err != nil {
		return nil, err
	}

	c.metrics.CommentsAdded.Inc()

	if task.Assignee != nil && task.Assignee.ID != author.ID {
		c.notifications.notify(ctx,
			models.NotificationCommentAdded,
			fmt.Sprintf("%s commented on %s", author.Name, task.Name),
			w.ID, task.ID, task.Assignee.ID,
		)
	}

	return comment, nil
}
