package model

// Task is a to-do item owned by exactly one user.
//
// ID and OwnerID are fixed at creation. A task is either open
// (IsComplete=false) or done (IsComplete=true); only an update by its owner
// moves it between the two.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsComplete  bool   `json:"isComplete"`
	OwnerID     int64  `json:"ownerId"`
}

// TaskPatch carries the fields of a partial update. A nil field is left
// unchanged.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsComplete  *bool   `json:"isComplete"`
}

// Apply merges the provided fields into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.IsComplete != nil {
		t.IsComplete = *p.IsComplete
	}
}
