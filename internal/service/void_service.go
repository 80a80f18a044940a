package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ury-pos/pos-core/internal/client"
	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/i18n"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
)

// UserDirectory resolves users, their roles and their credentials.
type UserDirectory interface {
	GetUser(ctx context.Context, name string) (*repository.User, error)
	GetUserRoles(ctx context.Context, name string) ([]string, error)
	// VerifyPassword fails with ErrCodeUnauthenticated when the password
	// does not authenticate the user.
	VerifyPassword(ctx context.Context, name, password string) error
}

// RoleBindingStore lists the roles bound to a parent document field.
type RoleBindingStore interface {
	ListRoles(ctx context.Context, parent, parentField, parentType string) ([]string, error)
}

// InvoiceStore loads invoices and saves void batches atomically.
type InvoiceStore interface {
	GetByID(ctx context.Context, name string) (*repository.Invoice, error)
	AppendVoidedItems(ctx context.Context, invoice *repository.Invoice, items []*repository.VoidedItem) error
}

// VoidEventPublisher announces saved void batches.
type VoidEventPublisher interface {
	PublishVoidRecorded(ctx context.Context, event *client.VoidRecordedEvent)
}

// VoidService gates item voids behind a manager's credentials and the void
// approval roles of the POS profile.
type VoidService struct {
	users    UserDirectory
	roles    RoleBindingStore
	invoices InvoiceStore
	audit    AuditSink
	events   VoidEventPublisher
	messages *i18n.Translator
	clock    Clock
	log      *logger.Logger
}

// NewVoidService creates a new void service
func NewVoidService(
	users UserDirectory,
	roles RoleBindingStore,
	invoices InvoiceStore,
	audit AuditSink,
	events VoidEventPublisher,
	messages *i18n.Translator,
	clock Clock,
	log *logger.Logger,
) *VoidService {
	return &VoidService{
		users:    users,
		roles:    roles,
		invoices: invoices,
		audit:    audit,
		events:   events,
		messages: messages,
		clock:    clock,
		log:      log,
	}
}

// ValidateManagerRequest carries the approving manager's credentials.
type ValidateManagerRequest struct {
	Username   string
	Password   string
	POSProfile string
}

// VoidItemRef names the voided item and the rate it was billed at.
type VoidItemRef struct {
	Item string
	Rate decimal.Decimal
}

// VoidItemEntry is one row of a void batch. Nil fields are missing values.
type VoidItemEntry struct {
	Item     *VoidItemRef
	Quantity *decimal.Decimal
}

// ProcessVoidItemRequest represents a void batch against one invoice
type ProcessVoidItemRequest struct {
	InvoiceNo      string
	Items          []VoidItemEntry
	Accountability string
	Notes          string
	Username       string
	Password       string
	POSProfile     string
	// SessionUser falls back to the request context when empty.
	SessionUser string
}

// ValidateManager checks that username holds a void approval role of the
// POS profile and that password authenticates them. The role check runs
// first, so an unauthorized user is rejected without a password check.
func (s *VoidService) ValidateManager(ctx context.Context, rc RequestContext, req ValidateManagerRequest) Result {
	user, err := s.users.GetUser(ctx, req.Username)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return Fail(KindUserNotFound, s.messages.Sprintf(rc.Locale, i18n.MsgUserNotFound))
		}
		return s.validationError(ctx, rc, err)
	}

	allowed, err := s.roles.ListRoles(ctx, req.POSProfile, repository.VoidRolesParentField, repository.VoidRolesParentType)
	if err != nil {
		return s.validationError(ctx, rc, err)
	}

	roles, err := s.users.GetUserRoles(ctx, user.Name)
	if err != nil {
		return s.validationError(ctx, rc, err)
	}

	if !hasAnyRole(roles, allowed) {
		s.log.Warn().
			Str("user", user.Name).
			Str("pos_profile", req.POSProfile).
			Str("session_user", rc.SessionUser).
			Msg("User lacks a void approval role")
		return Fail(KindUnauthorized, s.messages.Sprintf(rc.Locale, i18n.MsgUnauthorized))
	}

	if err := s.users.VerifyPassword(ctx, user.Name, req.Password); err != nil {
		if errors.IsCode(err, errors.ErrCodeUnauthenticated) {
			s.log.Warn().
				Str("user", user.Name).
				Str("session_user", rc.SessionUser).
				Msg("Manager credentials rejected")
			return Fail(KindInvalidCredentials, s.messages.Sprintf(rc.Locale, i18n.MsgInvalidCredentials))
		}
		return s.validationError(ctx, rc, err)
	}

	return OK()
}

// ProcessVoidItem validates the manager, then appends one void record per
// entry to a draft invoice. Either every entry is saved or none is.
func (s *VoidService) ProcessVoidItem(ctx context.Context, rc RequestContext, req ProcessVoidItemRequest) Result {
	auth := s.ValidateManager(ctx, rc, ValidateManagerRequest{
		Username:   req.Username,
		Password:   req.Password,
		POSProfile: req.POSProfile,
	})
	if !auth.Success {
		return auth
	}

	invoice, err := s.invoices.GetByID(ctx, req.InvoiceNo)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return Fail(KindInvoiceNotFound, s.messages.Sprintf(rc.Locale, i18n.MsgInvoiceNotFound, req.InvoiceNo))
		}
		s.audit.LogError(ctx, AuditVoidProcessing, fmt.Sprintf("load invoice %s: %v", req.InvoiceNo, err))
		return Fail(KindPersistenceError, s.messages.Sprintf(rc.Locale, i18n.MsgVoidFailed))
	}

	if !invoice.IsDraft() {
		return Fail(KindInvoiceFinalized, s.messages.Sprintf(rc.Locale, i18n.MsgInvoiceFinalized, invoice.Status))
	}

	sessionUser := req.SessionUser
	if sessionUser == "" {
		sessionUser = rc.SessionUser
	}

	records, row := buildVoidRecords(req, sessionUser)
	if row > 0 {
		return Fail(KindMissingField, s.messages.Sprintf(rc.Locale, i18n.MsgMissingField, strconv.Itoa(row)))
	}

	if err := s.invoices.AppendVoidedItems(ctx, invoice, records); err != nil {
		s.audit.LogError(ctx, AuditVoidProcessing, fmt.Sprintf("save invoice %s: %v", invoice.Name, err))
		return Fail(KindPersistenceError, s.messages.Sprintf(rc.Locale, i18n.MsgVoidSaveFailed, err.Error()))
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}

	s.log.Info().
		Str("invoice", invoice.Name).
		Str("voided_by", req.Username).
		Str("session_user", sessionUser).
		Int("items", len(records)).
		Str("total_amount", total.String()).
		Msg("Void items recorded")

	s.publishVoidRecorded(ctx, rc, invoice, records, req, sessionUser, total)
	return OK()
}

// buildVoidRecords stages one record per entry. It returns the 1-based row
// of the first entry missing its item or quantity, or 0 when all are valid.
// An empty batch reports row 1.
func buildVoidRecords(req ProcessVoidItemRequest, sessionUser string) ([]*repository.VoidedItem, int) {
	if len(req.Items) == 0 {
		return nil, 1
	}

	records := make([]*repository.VoidedItem, 0, len(req.Items))
	for i, entry := range req.Items {
		if entry.Item == nil || entry.Item.Item == "" || entry.Quantity == nil {
			return nil, i + 1
		}
		quantity := *entry.Quantity
		records = append(records, &repository.VoidedItem{
			Item:           entry.Item.Item,
			Rate:           entry.Item.Rate,
			Quantity:       quantity,
			Amount:         entry.Item.Rate.Mul(quantity),
			Accountability: req.Accountability,
			Notes:          req.Notes,
			VoidedBy:       req.Username,
			SessionUser:    sessionUser,
		})
	}
	return records, 0
}

func (s *VoidService) publishVoidRecorded(
	ctx context.Context,
	rc RequestContext,
	invoice *repository.Invoice,
	records []*repository.VoidedItem,
	req ProcessVoidItemRequest,
	sessionUser string,
	total decimal.Decimal,
) {
	if s.events == nil {
		return
	}

	items := make([]client.VoidedItemRecord, 0, len(records))
	for _, r := range records {
		items = append(items, client.VoidedItemRecord{
			Item:           r.Item,
			Rate:           r.Rate,
			Quantity:       r.Quantity,
			Amount:         r.Amount,
			Accountability: r.Accountability,
			Notes:          r.Notes,
		})
	}

	branch := rc.Branch
	if invoice.Branch != nil && *invoice.Branch != "" {
		branch = *invoice.Branch
	}

	s.events.PublishVoidRecorded(ctx, &client.VoidRecordedEvent{
		Invoice:     invoice.Name,
		POSProfile:  req.POSProfile,
		Branch:      branch,
		VoidedBy:    req.Username,
		SessionUser: sessionUser,
		Items:       items,
		TotalAmount: total,
		OccurredAt:  s.clock.Now(),
	})
}

func (s *VoidService) validationError(ctx context.Context, rc RequestContext, err error) Result {
	s.audit.LogError(ctx, AuditManagerValidation, err.Error())
	return Fail(KindInternalValidationError, s.messages.Sprintf(rc.Locale, i18n.MsgValidationFailed))
}

func hasAnyRole(userRoles, allowed []string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	for _, role := range userRoles {
		if _, ok := set[role]; ok {
			return true
		}
	}
	return false
}
