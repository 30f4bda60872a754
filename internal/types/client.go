package types

import (
	"strings"
	"time"
)

// Client is a billed party. ID, CreatedAt are stamped by the client store and never change afterwards.
// Optional fields are empty strings when absent.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	TaxID     string    `json:"taxId,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Address struct {
	Street  string `json:"street,omitempty" yaml:"street"`
	City    string `json:"city,omitempty" yaml:"city"`
	State   string `json:"state,omitempty" yaml:"state"`
	ZipCode string `json:"zipCode,omitempty" yaml:"zip_code"`
	Country string `json:"country,omitempty" yaml:"country"`
}

// ClientInput carries the caller supplied fields of a new client.
type ClientInput struct {
	Name    string   `yaml:"name"`
	Email   string   `yaml:"email"`
	Phone   string   `yaml:"phone"`
	Company string   `yaml:"company"`
	TaxID   string   `yaml:"tax_id"`
	Address *Address `yaml:"address"`
}

// ClientPatch is a partial update. Nil fields are left untouched.
type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	TaxID   *string
	Address *Address
}

// Apply merges the patch onto c. Identity and timestamps are not touched.
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.TaxID != nil {
		c.TaxID = *p.TaxID
	}
	if p.Address != nil {
		addr := *p.Address
		c.Address = &addr
	}
}

// Matches reports whether the lower-cased query is a substring of name, email or company.
func (c Client) Matches(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(c.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(c.Email), lowerQuery) ||
		strings.Contains(strings.ToLower(c.Company), lowerQuery)
}

// Clone returns a copy that shares no pointers with c.
func (c Client) Clone() Client {
	if c.Address != nil {
		addr := *c.Address
		c.Address = &addr
	}
	return c
}
