package model

import "time"

// Fixed notification identities. A success and an error notification may
// coexist; two with the same identity may not.
const (
	SuccessPopupID = "success-popup"
	ErrorPopupID   = "error-popup"
)

// Color tags the category a notification is rendered with.
type Color string

const (
	ColorSuccess Color = "success"
	ColorError   Color = "error"
)

// CSS returns the background color used for the overlay.
func (c Color) CSS() string {
	switch c {
	case ColorSuccess:
		return "green"
	case ColorError:
		return "red"
	default:
		return "gray"
	}
}

// Notification is an ephemeral message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Message   string    `json:"message"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
