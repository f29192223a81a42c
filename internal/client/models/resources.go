package models

import "time"

// SipAccount is a SIP registration managed by the console.
type SipAccount struct {
	ID                 int64     `json:"id"`
	SipURI             string    `json:"sip_uri"`
	SipPassword        string    `json:"sip_password,omitempty"`
	WebsocketServer    string    `json:"websocket_server,omitempty"`
	DisplayName        string    `json:"display_name,omitempty"`
	AutoAnswer         bool      `json:"auto_answer"`
	RegisterExpiration int       `json:"register_expiration,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UserID             int64     `json:"user_id"`
}

// SipAccountInput is the create/update payload of a SIP account.
type SipAccountInput struct {
	SipURI             string `json:"sip_uri"`
	SipPassword        string `json:"sip_password"`
	WebsocketServer    string `json:"websocket_server,omitempty"`
	DisplayName        string `json:"display_name,omitempty"`
	AutoAnswer         bool   `json:"auto_answer"`
	RegisterExpiration int    `json:"register_expiration,omitempty"`
	UserID             int64  `json:"user_id,omitempty"`
}

type Contact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContactInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	IsFavorite  bool   `json:"is_favorite"`
}

// CallType is the direction/outcome of a call.
type CallType string

const (
	CallIncoming CallType = "incoming"
	CallOutgoing CallType = "outgoing"
	CallMissed   CallType = "missed"
)

type CallRecord struct {
	ID              int64      `json:"id"`
	PhoneNumber     string     `json:"phone_number"`
	ContactName     string     `json:"contact_name,omitempty"`
	CallType        CallType   `json:"call_type"`
	CallStatus      string     `json:"call_status,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	Answered        bool       `json:"answered"`
}

// Duration returns the call length as a time.Duration.
func (c CallRecord) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

// Party is the contact name when known, otherwise the phone number.
func (c CallRecord) Party() string {
	if c.ContactName != "" {
		return c.ContactName
	}
	return c.PhoneNumber
}

// User is an account of the console itself, as listed by admins.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"adm_bool"`
	CreatedAt time.Time `json:"created_at"`
}

type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"adm_bool"`
}
