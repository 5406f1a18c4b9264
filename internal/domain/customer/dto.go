// internal/domain/customer/dto.go
package customer

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	RegistrationState *RegistrationState `json:"registration_state,omitempty"`
	FullName          *string            `json:"full_name,omitempty"`
	Location          *string            `json:"location,omitempty"`
	AccountID         *string            `json:"account_id,omitempty"`
	IsRegistered      *bool              `json:"is_registered,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *Patch) IsEmpty() bool {
	return p == nil ||
		(p.RegistrationState == nil && p.FullName == nil && p.Location == nil &&
			p.AccountID == nil && p.IsRegistered == nil)
}

// Fields returns the patch as a column/attribute map, keyed by stored name.
func (p *Patch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p == nil {
		return fields
	}
	if p.RegistrationState != nil {
		fields["registration_state"] = string(*p.RegistrationState)
	}
	if p.FullName != nil {
		fields["full_name"] = *p.FullName
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.AccountID != nil {
		fields["account_id"] = *p.AccountID
	}
	if p.IsRegistered != nil {
		fields["is_registered"] = *p.IsRegistered
	}
	return fields
}

// Apply copies the set fields onto c.
func (p *Patch) Apply(c *Customer) {
	if p == nil || c == nil {
		return
	}
	if p.RegistrationState != nil {
		c.RegistrationState = *p.RegistrationState
	}
	if p.FullName != nil {
		v := *p.FullName
		c.FullName = &v
	}
	if p.Location != nil {
		v := *p.Location
		c.Location = &v
	}
	if p.AccountID != nil {
		v := *p.AccountID
		c.AccountID = &v
	}
	if p.IsRegistered != nil {
		c.IsRegistered = *p.IsRegistered
	}
}

// WithState starts a patch that moves the customer to s.
func WithState(s RegistrationState) *Patch {
	return &Patch{RegistrationState: &s}
}
