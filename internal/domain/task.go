package domain

import "time"

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerSummary carries the owner fields exposed on the admin listing.
type OwnerSummary struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// TaskWithOwner is a task joined with its owner, returned by the admin listing.
type TaskWithOwner struct {
	Task
	Owner OwnerSummary
}
