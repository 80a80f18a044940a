package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Domain types for the void gate and the kitchen status view ──────────────

// Invoice document states.
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// Binding that lists the roles allowed to approve voids on a POS profile.
const (
	VoidRolesParentField = "custom_roles_allowed_for_voiding"
	VoidRolesParentType  = "POS Profile"
)

// Status reported for a ticket whose items are all struck.
const OrderStatusServed = "Served"

// User is a POS user that can act as an approving manager.
type User struct {
	Name         string
	FullName     string
	PasswordHash string
	Enabled      bool
}

// Invoice is the POS invoice header plus its voided item log.
type Invoice struct {
	Name            string
	DocStatus       int
	Status          string // Draft | Paid | Consolidated | Return ...
	Branch          *string
	POSProfile      string
	RestaurantTable *string
	Version         int64
	Modified        time.Time
	VoidedItems     []*VoidedItem
}

// IsDraft reports whether void records may still be appended.
func (i *Invoice) IsDraft() bool {
	return i.DocStatus == DocStatusDraft
}

// VoidedItem is one approved void record. Records are append-only.
type VoidedItem struct {
	ID             string
	Parent         string
	Idx            int
	Item           string
	Rate           decimal.Decimal
	Quantity       decimal.Decimal
	Amount         decimal.Decimal // Rate * Quantity
	Accountability string
	Notes          string
	VoidedBy       string
	SessionUser    string
	CreatedAt      time.Time
}

// KOT is a kitchen order ticket. Date and StartTimePrep are kept as stored
// text; the status view combines and parses them.
type KOT struct {
	Name            string
	Table           string
	Invoice         string
	OrderStatus     string
	PreparationTime int // minutes
	Date            *string
	StartTimePrep   *string
	Type            string
	Items           []*KOTItem
}

// KOTItem is one line of a kitchen order ticket.
type KOTItem struct {
	Parent          string
	Idx             int
	ItemName        string
	Quantity        int
	PreparationTime int
	Striked         bool
}

// ErrorLogEntry is one persisted internal error.
type ErrorLogEntry struct {
	ID        string
	Title     string
	Message   string
	CreatedAt time.Time
}
