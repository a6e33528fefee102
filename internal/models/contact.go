// Package models contains data structures for the application's domain models.
package models

import "time"

// ContactSubject classifies an inbound contact message.
type ContactSubject string

const (
	// ContactSubjectGeneral is a general inquiry.
	ContactSubjectGeneral ContactSubject = "general"
	// ContactSubjectAdvertise is an advertising or sponsorship request.
	ContactSubjectAdvertise ContactSubject = "advertise"
	// ContactSubjectSupport is a technical support request.
	ContactSubjectSupport ContactSubject = "support"
	// ContactSubjectFeedback is feedback or a suggestion.
	ContactSubjectFeedback ContactSubject = "feedback"
	// ContactSubjectOther carries a free-form CustomSubject.
	ContactSubjectOther ContactSubject = "other"
)

// Valid reports whether the subject is one of the known enum values.
func (s ContactSubject) Valid() bool {
	switch s {
	case ContactSubjectGeneral, ContactSubjectAdvertise, ContactSubjectSupport,
		ContactSubjectFeedback, ContactSubjectOther:
		return true
	}
	return false
}

// ContactStatus tracks the admin workflow of a message. Transitions only move
// forward (new → read → replied → archived); each one stamps its timestamp.
type ContactStatus string

const (
	// ContactStatusNew is the initial state of every message.
	ContactStatusNew ContactStatus = "new"
	// ContactStatusRead indicates an admin opened the message.
	ContactStatusRead ContactStatus = "read"
	// ContactStatusReplied indicates an admin responded.
	ContactStatusReplied ContactStatus = "replied"
	// ContactStatusArchived is the terminal state.
	ContactStatusArchived ContactStatus = "archived"
)

// rank orders statuses for the forward-only check.
func (s ContactStatus) rank() int {
	switch s {
	case ContactStatusNew:
		return 0
	case ContactStatusRead:
		return 1
	case ContactStatusReplied:
		return 2
	case ContactStatusArchived:
		return 3
	}
	return -1
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s ContactStatus) CanAdvanceTo(next ContactStatus) bool {
	return next.rank() > s.rank()
}

// ContactMessage is an inbound message from the contact form.
type ContactMessage struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Email         string         `gorm:"size:100;not null" json:"email"`
	Phone         string         `gorm:"size:20" json:"phone,omitempty"`
	Subject       ContactSubject `gorm:"type:varchar(20);not null;default:'general'" json:"subject"`
	CustomSubject string         `gorm:"size:200" json:"custom_subject,omitempty"`
	Message       string         `gorm:"type:text;not null" json:"message"`

	IPAddress string `gorm:"size:45" json:"-"`
	UserAgent string `gorm:"type:text" json:"-"`

	Status     ContactStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	ReadAt     *time.Time    `json:"read_at,omitempty"`
	RepliedAt  *time.Time    `json:"replied_at,omitempty"`
	ArchivedAt *time.Time    `json:"archived_at,omitempty"`

	Response    string `gorm:"type:text" json:"response,omitempty"`
	RespondedBy *uint  `json:"responded_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubjectLabel returns the display subject: the custom text for "other",
// otherwise the enum value.
func (m *ContactMessage) SubjectLabel() string {
	if m.Subject == ContactSubjectOther && m.CustomSubject != "" {
		return m.CustomSubject
	}
	return string(m.Subject)
}

// Subscriber is a newsletter recipient. Unsubscribe flips IsActive off and
// never deletes the row, so a resubscribe reactivates the original record.
type Subscriber struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
	// Token authorizes an unsubscribe link without authentication.
	Token     string    `gorm:"size:36;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
