package models

import "time"

// DisplayDateLayout renders dates the way list endpoints expose them,
// e.g. "Fri Sep 15 2023".
const DisplayDateLayout = "Mon Jan 02 2006"

// User represents a user in the system. Scalar fields are nullable because
// updates overwrite them even when the request omits them.
type User struct {
	ID    string   `json:"_id"`
	Name  *string  `json:"name"`
	Email *string  `json:"email"`
	Age   *float64 `json:"age"`
	Image Image    `json:"image"`
	Posts []string `json:"posts"`
}

// Event represents an event ("post") as stored. Creator and participants are
// weak references resolved only at read time.
type Event struct {
	ID           string    `json:"_id"`
	EventName    *string   `json:"eventName"`
	Creator      *string   `json:"creator"`
	Participants []string  `json:"participants"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	Image        Image     `json:"image"`
	Date         time.Time `json:"date"`
}

// UserRef is a populated user reference. Image is only filled on the
// expanded event view.
type UserRef struct {
	ID    string  `json:"_id"`
	Name  *string `json:"name"`
	Image *Image  `json:"image,omitempty"`
}

// EventSummary is the list view of an event: references populated with
// names, image normalized and date reduced to a display string.
type EventSummary struct {
	ID           string    `json:"_id"`
	EventName    *string   `json:"eventName"`
	Creator      *UserRef  `json:"creator"`
	Participants []UserRef `json:"participants"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	Image        string    `json:"image"`
	Date         string    `json:"date"`
}

// EventDetail is the single-event view: references populated, image and
// date exactly as stored.
type EventDetail struct {
	ID           string    `json:"_id"`
	EventName    *string   `json:"eventName"`
	Creator      *UserRef  `json:"creator"`
	Participants []UserRef `json:"participants"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	Image        Image     `json:"image"`
	Date         time.Time `json:"date"`
}

// UserFields carries the writable scalar fields of a user. Nil means the
// request did not supply the field.
type UserFields struct {
	Name  *string  `json:"name" validate:"required"`
	Email *string  `json:"email" validate:"required"`
	Age   *float64 `json:"age" validate:"required"`
}

// EventFields carries the writable fields of an event. Date is the raw
// client input and is only read on create.
type EventFields struct {
	EventName    *string  `json:"eventName" validate:"required"`
	Creator      *string  `json:"creator" validate:"required"`
	Participants []string `json:"participants"`
	Description  *string  `json:"description" validate:"required"`
	Location     *string  `json:"location" validate:"required"`
	Date         string   `json:"date"`
}

// ChangeType names a change broadcast to live clients.
type ChangeType string

const (
	ChangeUserCreated  ChangeType = "user_created"
	ChangeUserUpdated  ChangeType = "user_updated"
	ChangeUserDeleted  ChangeType = "user_deleted"
	ChangeEventCreated ChangeType = "event_created"
	ChangeEventUpdated ChangeType = "event_updated"
	ChangeEventDeleted ChangeType = "event_deleted"
)

// Change is a notification about a persisted write.
type Change struct {
	Type ChangeType `json:"type"`
	ID   string     `json:"id"`
	At   time.Time  `json:"at"`
}

// FormatDisplayDate renders t in loc using DisplayDateLayout.
func FormatDisplayDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayDateLayout)
}
