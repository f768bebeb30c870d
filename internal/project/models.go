package project

import "time"

// Workspace is one entry in the recent-workspaces list the dashboard shows.
type Workspace struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Template     string    `json:"template,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastOpenedAt time.Time `json:"lastOpenedAt"`
}
