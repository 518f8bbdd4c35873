package models

import "time"

// ComplianceItem is a requirement the proposal must address. Items tagged
// for a section (or marked mandatory) are pulled into that section's
// generation context.
type ComplianceItem struct {
	ID          string    `json:"id" db:"id"`
	ProposalID  string    `json:"proposal_id" db:"proposal_id"`
	Requirement string    `json:"requirement" db:"requirement"`
	SectionKeys []string  `json:"section_keys" db:"section_keys"`
	Mandatory   bool      `json:"mandatory" db:"mandatory"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AppliesTo reports whether the item is in scope for the given section key.
func (c *ComplianceItem) AppliesTo(sectionKey string) bool {
	if c.Mandatory {
		return true
	}
	for _, k := range c.SectionKeys {
		if k == sectionKey {
			return true
		}
	}
	return false
}

// WinTheme is a thematic statement the proposal is built around. Only
// approved or primary themes enter generation context.
type WinTheme struct {
	ID         string    `json:"id" db:"id"`
	ProposalID string    `json:"proposal_id" db:"proposal_id"`
	Statement  string    `json:"statement" db:"statement"`
	Approved   bool      `json:"approved" db:"approved"`
	Primary    bool      `json:"primary" db:"is_primary"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PastPerformance is a prior engagement cited as evidence of capability.
type PastPerformance struct {
	ID          string    `json:"id" db:"id"`
	ProposalID  string    `json:"proposal_id" db:"proposal_id"`
	Client      string    `json:"client" db:"client"`
	Description string    `json:"description" db:"description"`
	Outcome     string    `json:"outcome" db:"outcome"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PartnerCapability describes a teaming partner's relevant capability.
type PartnerCapability struct {
	ID         string    `json:"id" db:"id"`
	ProposalID string    `json:"proposal_id" db:"proposal_id"`
	Partner    string    `json:"partner" db:"partner"`
	Capability string    `json:"capability" db:"capability"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
