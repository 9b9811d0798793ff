package models

import "time"

// CommentAuthor is the author snapshot stored with a comment.
type CommentAuthor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Avatar  string `json:"avatar,omitempty"`
}

// Comment is a node in a per-task reply tree.
type Comment struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Author    CommentAuthor `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
	Replies   []*Comment    `json:"replies"`
}

// FindComment searches the tree depth-first, checking each comment before its replies.
func FindComment(comments []*Comment, commentID string) *Comment {
	for _, comment := range comments {
		if comment == nil {
			continue
		}

		if comment.ID == commentID {
			return comment
		}

		if found := FindComment(comment.Replies, commentID); found != nil {
			return found
		}
	}

	return nil
}

// CommentDepth returns the 1-based depth of commentID in the tree, or 0 when absent.
func CommentDepth(comments []*Comment, commentID string) int {
	for _, comment := range comments {
		if comment == nil {
			continue
		}

		if comment.ID == commentID {
			return 1
		}

		if depth := CommentDepth(comment.Replies, commentID); depth > 0 {
			return depth + 1
		}
	}

	return 0
}

// CountComments returns the number of comments in the tree, replies included.
func CountComments(comments []*Comment) int {
	total := 0

	for _, comment := range comments {
		if comment == nil {
			continue
		}

		total += 1 + CountComments(comment.Replies)
	}

	return total
}
