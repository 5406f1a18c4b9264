// internal/repository/appwrite/customer_repo.go
package appwrite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tusafishe-service/internal/domain/customer"
	xerrors "tusafishe-service/internal/pkg/errors"
)

// CustomerRepository stores customers as documents of one collection.
type CustomerRepository struct {
	client       *Client
	collectionID string
	now          func() time.Time
}

func NewCustomerRepository(client *Client, collectionID string) *CustomerRepository {
	return &CustomerRepository{
		client:       client,
		collectionID: collectionID,
		now:          time.Now,
	}
}

// document is a customer as Appwrite returns it.
type document struct {
	ID                string  `json:"$id"`
	UpdatedAt         string  `json:"$updatedAt"`
	PhoneNumber       string  `json:"phone_number"`
	RegistrationState string  `json:"registration_state"`
	IsRegistered      bool    `json:"is_registered"`
	FullName          *string `json:"full_name"`
	Location          *string `json:"location"`
	AccountID         *string `json:"account_id"`
	Credits           float64 `json:"credits"`
	CreatedAt         string  `json:"created_at"`
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

// Python-era records were written with naive isoformat timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTime(v string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d *document) toCustomer() *customer.Customer {
	return &customer.Customer{
		ID:                d.ID,
		PhoneNumber:       d.PhoneNumber,
		RegistrationState: customer.ParseRegistrationState(d.RegistrationState),
		IsRegistered:      d.IsRegistered,
		FullName:          d.FullName,
		Location:          d.Location,
		AccountID:         d.AccountID,
		Credits:           int(d.Credits),
		CreatedAt:         parseTime(d.CreatedAt),
		UpdatedAt:         parseTime(d.UpdatedAt),
	}
}

func (r *CustomerRepository) documentsPath(parts ...string) string {
	return r.client.databasePath(append([]string{"collections", url.PathEscape(r.collectionID), "documents"}, parts...)...)
}

// equalQuery builds an Appwrite equality filter.
func equalQuery(attribute, value string) string {
	return fmt.Sprintf("equal(%q,%q)", attribute, value)
}

// FindByPhone returns the customer with exactly this phone number, or
// xerrors.ErrNotFound.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	q := url.Values{}
	q.Add("queries[]", equalQuery("phone_number", phone))

	var list documentList
	if err := r.client.do(ctx, http.MethodGet, r.documentsPath()+"?"+q.Encode(), nil, &list); err != nil {
		// A 404 here means the database or collection is wrong, not that
		// the customer is missing.
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to find customer: %v: %w", err, xerrors.ErrUpstream)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	if len(list.Documents) == 0 {
		return nil, xerrors.ErrNotFound
	}
	return list.Documents[0].toCustomer(), nil
}

// Create inserts a customer with registration defaults and lets Appwrite
// assign the id.
func (r *CustomerRepository) Create(ctx context.Context, phone string) (*customer.Customer, error) {
	c := customer.NewCustomer(phone, r.now().UTC())

	payload := map[string]interface{}{
		"documentId": "unique()",
		"data": map[string]interface{}{
			"phone_number":       c.PhoneNumber,
			"created_at":         c.CreatedAt.Format(time.RFC3339),
			"registration_state": string(c.RegistrationState),
			"is_registered":      c.IsRegistered,
			"credits":            c.Credits,
		},
	}

	var doc document
	if err := r.client.do(ctx, http.MethodPost, r.documentsPath(), payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return doc.toCustomer(), nil
}

// Update applies a partial update to the document with this id.
func (r *CustomerRepository) Update(ctx context.Context, id string, patch *customer.Patch) (*customer.Customer, error) {
	if patch.IsEmpty() {
		return nil, xerrors.ErrInvalidInput
	}

	payload := map[string]interface{}{"data": patch.Fields()}

	var doc document
	if err := r.client.do(ctx, http.MethodPatch, r.documentsPath(url.PathEscape(id)), payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to update customer %s: %w", id, err)
	}
	return doc.toCustomer(), nil
}
