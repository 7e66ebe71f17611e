package models

import "time"

// Announcement is a notice shown to all students or to a targeted subset.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Published bool      `db:"published" json:"published"`
	ForAll    bool      `db:"for_all" json:"for_all"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	StudentIDs []string `db:"-" json:"student_ids,omitempty"`
}

// AnnouncementRequest creates or replaces an announcement and its targets.
type AnnouncementRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Content    string   `json:"content" validate:"required"`
	Published  bool     `json:"published"`
	ForAll     bool     `json:"for_all"`
	StudentIDs []string `json:"student_ids" validate:"required_if=ForAll false,dive,required"`
}

// AnnouncementFilter narrows admin listings.
type AnnouncementFilter struct {
	Published *bool
	Page      int
	PageSize  int
}
