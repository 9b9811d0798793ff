package models

import "time"

// NotificationKind identifies what happened.
type NotificationKind string

const (
	NotificationTaskAssigned      NotificationKind = "task_assigned"
	NotificationTaskCompleted     NotificationKind = "task_completed"
	NotificationTaskAvailable     NotificationKind = "task_available"
	NotificationTaskOverdue       NotificationKind = "task_overdue"
	NotificationCommentAdded      NotificationKind = "comment_added"
	NotificationWorkflowCompleted NotificationKind = "workflow_completed"
	NotificationWorkflowCancelled NotificationKind = "workflow_cancelled"
)

// Notification is an emitted notification record. Delivery is out of scope.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Message     string           `json:"message"`
	WorkflowID  string           `json:"workflow_id"`
	TaskID      string           `json:"task_id,omitempty"`
	RecipientID string           `json:"recipient_id,omitempty"`
	DedupeKey   string           `json:"dedupe_key,omitempty"` // Suppresses repeated reminders
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// UserRole is advisory only.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User is an entry in the user directory, used for assignment and supervisor lookup.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"       validate:"required"`
	Email     string    `json:"email"      validate:"required,email"`
	Role      UserRole  `json:"role"       validate:"omitempty,oneof=admin member"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AsAssignee returns the snapshot stored on tasks.
func (u *User) AsAssignee() *Assignee {
	return &Assignee{ID: u.ID, Name: u.Name, Email: u.Email}
}

// AsCommentAuthor returns the snapshot stored on comments.
func (u *User) AsCommentAuthor() CommentAuthor {
	return CommentAuthor{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.Role == UserRoleAdmin,
		Avatar:  u.Avatar,
	}
}
