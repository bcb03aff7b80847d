package models

import (
	"maps"
	"time"
)

// StepData is the stored object of one step.
type StepData map[string]any

// FormEntry is a user's wizard progress. Steps maps step numbers, as decimal
// strings, to their objects.
type FormEntry struct {
	ID          string              `json:"id" bson:"_id"`
	UserID      string              `json:"userId" bson:"userId"`
	Steps       map[string]StepData `json:"steps" bson:"steps"`
	Completed   bool                `json:"completed" bson:"completed"`
	CompletedAt *time.Time          `json:"completedAt" bson:"completedAt"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// NewFormEntry returns an empty, not completed entry for userID.
func NewFormEntry(id, userID string, now time.Time) *FormEntry {
	return &FormEntry{
		ID:        id,
		UserID:    userID,
		Steps:     map[string]StepData{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Step returns the object stored at key, or an empty object.
func (e *FormEntry) Step(key string) StepData {
	if d, ok := e.Steps[key]; ok && d != nil {
		return d
	}
	return StepData{}
}

// Merge shallow-merges patch into the object at key; patch keys win.
// Other steps are not touched. It returns the merged object.
func (e *FormEntry) Merge(key string, patch StepData, now time.Time) StepData {
	if e.Steps == nil {
		e.Steps = map[string]StepData{}
	}
	merged := StepData{}
	maps.Copy(merged, e.Steps[key])
	maps.Copy(merged, patch)
	e.Steps[key] = merged
	e.UpdatedAt = now
	return merged
}

// Clone returns a deep enough copy for handing out of an in-memory store:
// the steps map and each step object are copied.
func (e *FormEntry) Clone() *FormEntry {
	c := *e
	c.Steps = make(map[string]StepData, len(e.Steps))
	for k, v := range e.Steps {
		c.Steps[k] = maps.Clone(v)
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
