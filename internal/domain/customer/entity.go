// internal/domain/customer/entity.go
package customer

import (
	"strings"
	"time"
)

// RegistrationState is the step a customer is at in the signup conversation.
type RegistrationState string

const (
	StateNew                  RegistrationState = "new"
	StateMainMenu             RegistrationState = "main_menu"
	StateRegistrationID       RegistrationState = "registration_id"
	StateRegistrationName     RegistrationState = "registration_name"
	StateRegistrationLocation RegistrationState = "registration_location"
	StateCompleted            RegistrationState = "completed"
)

// States lists every registration state in conversation order.
var States = []RegistrationState{
	StateNew,
	StateMainMenu,
	StateRegistrationID,
	StateRegistrationName,
	StateRegistrationLocation,
	StateCompleted,
}

// Valid reports whether s is one of the known states.
func (s RegistrationState) Valid() bool {
	switch s {
	case StateNew, StateMainMenu, StateRegistrationID,
		StateRegistrationName, StateRegistrationLocation, StateCompleted:
		return true
	}
	return false
}

// ParseRegistrationState maps a stored value onto the enum. Records written
// before the field existed carry no value and read as StateNew.
func ParseRegistrationState(v string) RegistrationState {
	s := RegistrationState(strings.TrimSpace(v))
	if s == "" {
		return StateNew
	}
	return s
}

type Customer struct {
	ID                string            `json:"id"`
	PhoneNumber       string            `json:"phone_number"`
	RegistrationState RegistrationState `json:"registration_state"`
	IsRegistered      bool              `json:"is_registered"`

	// Populated during registration
	FullName  *string `json:"full_name,omitempty"`
	Location  *string `json:"location,omitempty"`
	AccountID *string `json:"account_id,omitempty"`

	Credits int `json:"credits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Revision is bumped by stores that support it; zero otherwise.
	Revision int64 `json:"revision,omitempty"`
}

// NewCustomer returns the defaults a first-time sender is created with.
func NewCustomer(phone string, now time.Time) *Customer {
	return &Customer{
		PhoneNumber:       phone,
		RegistrationState: StateNew,
		IsRegistered:      false,
		Credits:           0,
		CreatedAt:         now,
	}
}

// AccountIDOrDefault returns the account id or fallback when unset.
func (c *Customer) AccountIDOrDefault(fallback string) string {
	if c.AccountID == nil || *c.AccountID == "" {
		return fallback
	}
	return *c.AccountID
}

// accountSuffixLen is the number of trailing id characters kept in an account id.
const accountSuffixLen = 6

// DeriveAccountID builds the public account id from a store-assigned id:
// prefix followed by the uppercased last six characters of id.
func DeriveAccountID(prefix, id string) string {
	suffix := id
	if r := []rune(id); len(r) > accountSuffixLen {
		suffix = string(r[len(r)-accountSuffixLen:])
	}
	return prefix + strings.ToUpper(suffix)
}
