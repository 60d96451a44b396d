package models

import "time"

// Record is a single cheat sheet entry
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RecordInput holds the caller-supplied fields of a new record
type RecordInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Content     string `json:"content"`
}

// RecordUpdate is a partial update; nil fields are left untouched
type RecordUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u RecordUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Content == nil
}

// ApplyTo returns a copy of r with the provided fields overwritten.
// ID and timestamps are not touched.
func (u RecordUpdate) ApplyTo(r Record) Record {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	return r
}

// Catalog is a point-in-time copy of the persisted catalog state
type Catalog struct {
	Records          []Record `json:"records"`
	CustomCategories []string `json:"customCategories"`
}

// Clone returns a deep copy of the catalog
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Records:          make([]Record, len(c.Records)),
		CustomCategories: make([]string, len(c.CustomCategories)),
	}
	copy(out.Records, c.Records)
	copy(out.CustomCategories, c.CustomCategories)
	return out
}

// StringPtr returns a pointer to s, handy for building updates
func StringPtr(s string) *string {
	return &s
}
