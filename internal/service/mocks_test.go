package service

import (
	"context"
	"sync"
	"time"

	"github.com/ury-pos/pos-core/internal/client"
	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/repository"
)

// MockUserDirectory is a test mock for UserDirectory
type MockUserDirectory struct {
	users              map[string]*repository.User
	roles              map[string][]string
	passwords          map[string]string
	verifyCalls        int
	GetUserFunc        func(ctx context.Context, name string) (*repository.User, error)
	GetUserRolesFunc   func(ctx context.Context, name string) ([]string, error)
	VerifyPasswordFunc func(ctx context.Context, name, password string) error
}

func NewMockUserDirectory() *MockUserDirectory {
	return &MockUserDirectory{
		users:     make(map[string]*repository.User),
		roles:     make(map[string][]string),
		passwords: make(map[string]string),
	}
}

func (m *MockUserDirectory) AddUser(name, password string, roles ...string) {
	m.users[name] = &repository.User{Name: name, FullName: name, Enabled: true}
	m.roles[name] = roles
	m.passwords[name] = password
}

func (m *MockUserDirectory) GetUser(ctx context.Context, name string) (*repository.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, name)
	}
	u, ok := m.users[name]
	if !ok {
		return nil, errors.NotFound("user", name)
	}
	return u, nil
}

func (m *MockUserDirectory) GetUserRoles(ctx context.Context, name string) ([]string, error) {
	if m.GetUserRolesFunc != nil {
		return m.GetUserRolesFunc(ctx, name)
	}
	return m.roles[name], nil
}

func (m *MockUserDirectory) VerifyPassword(ctx context.Context, name, password string) error {
	m.verifyCalls++
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(ctx, name, password)
	}
	if want, ok := m.passwords[name]; !ok || want != password {
		return errors.New(errors.ErrCodeUnauthenticated, "invalid username or password")
	}
	return nil
}

// MockRoleBindingStore is a test mock for RoleBindingStore
type MockRoleBindingStore struct {
	roles         map[string][]string
	ListRolesFunc func(ctx context.Context, parent, parentField, parentType string) ([]string, error)
}

func NewMockRoleBindingStore() *MockRoleBindingStore {
	return &MockRoleBindingStore{roles: make(map[string][]string)}
}

func (m *MockRoleBindingStore) Allow(profile string, roles ...string) {
	m.roles[profile] = roles
}

func (m *MockRoleBindingStore) ListRoles(ctx context.Context, parent, parentField, parentType string) ([]string, error) {
	if m.ListRolesFunc != nil {
		return m.ListRolesFunc(ctx, parent, parentField, parentType)
	}
	if parentField != repository.VoidRolesParentField || parentType != repository.VoidRolesParentType {
		return nil, nil
	}
	return m.roles[parent], nil
}

// MockInvoiceStore is a test mock for InvoiceStore
type MockInvoiceStore struct {
	invoices              map[string]*repository.Invoice
	saves                 int
	GetByIDFunc           func(ctx context.Context, name string) (*repository.Invoice, error)
	AppendVoidedItemsFunc func(ctx context.Context, invoice *repository.Invoice, items []*repository.VoidedItem) error
}

func NewMockInvoiceStore() *MockInvoiceStore {
	return &MockInvoiceStore{invoices: make(map[string]*repository.Invoice)}
}

func (m *MockInvoiceStore) Put(invoice *repository.Invoice) {
	m.invoices[invoice.Name] = invoice
}

func (m *MockInvoiceStore) GetByID(ctx context.Context, name string) (*repository.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, name)
	}
	inv, ok := m.invoices[name]
	if !ok {
		return nil, errors.NotFound("invoice", name)
	}
	copied := *inv
	copied.VoidedItems = append([]*repository.VoidedItem(nil), inv.VoidedItems...)
	return &copied, nil
}

func (m *MockInvoiceStore) AppendVoidedItems(ctx context.Context, invoice *repository.Invoice, items []*repository.VoidedItem) error {
	m.saves++
	if m.AppendVoidedItemsFunc != nil {
		return m.AppendVoidedItemsFunc(ctx, invoice, items)
	}
	stored, ok := m.invoices[invoice.Name]
	if !ok {
		return errors.NotFound("invoice", invoice.Name)
	}
	if stored.Version != invoice.Version || !stored.IsDraft() {
		return errors.New(errors.ErrCodeConflict, "invoice changed")
	}
	stored.VoidedItems = append(stored.VoidedItems, items...)
	stored.Version++
	invoice.Version = stored.Version
	invoice.VoidedItems = append(invoice.VoidedItems, items...)
	return nil
}

// MockKOTStore is a test mock for KOTStore
type MockKOTStore struct {
	kots                      []*repository.KOT
	items                     map[string][]*repository.KOTItem
	ListByTableAndInvoiceFunc func(ctx context.Context, table, invoice string) ([]*repository.KOT, error)
	GetItemsFunc              func(ctx context.Context, kotName string) ([]*repository.KOTItem, error)
}

func NewMockKOTStore() *MockKOTStore {
	return &MockKOTStore{items: make(map[string][]*repository.KOTItem)}
}

func (m *MockKOTStore) Add(kot *repository.KOT, items ...*repository.KOTItem) {
	m.kots = append(m.kots, kot)
	m.items[kot.Name] = items
}

func (m *MockKOTStore) ListByTableAndInvoice(ctx context.Context, table, invoice string) ([]*repository.KOT, error) {
	if m.ListByTableAndInvoiceFunc != nil {
		return m.ListByTableAndInvoiceFunc(ctx, table, invoice)
	}
	result := make([]*repository.KOT, 0)
	for _, k := range m.kots {
		if k.Table == table && k.Invoice == invoice {
			result = append(result, k)
		}
	}
	return result, nil
}

func (m *MockKOTStore) GetItems(ctx context.Context, kotName string) ([]*repository.KOTItem, error) {
	if m.GetItemsFunc != nil {
		return m.GetItemsFunc(ctx, kotName)
	}
	return m.items[kotName], nil
}

type auditEntry struct {
	Title   string
	Message string
}

// MockAuditSink records LogError calls
type MockAuditSink struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *MockAuditSink) LogError(ctx context.Context, title, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{Title: title, Message: message})
}

func (m *MockAuditSink) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	titles := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		titles = append(titles, e.Title)
	}
	return titles
}

// MockVoidEventPublisher records published events
type MockVoidEventPublisher struct {
	events []*client.VoidRecordedEvent
}

func (m *MockVoidEventPublisher) PublishVoidRecorded(ctx context.Context, event *client.VoidRecordedEvent) {
	m.events = append(m.events, event)
}

// MockErrorLogStore is a test mock for ErrorLogStore
type MockErrorLogStore struct {
	entries    []*repository.ErrorLogEntry
	AppendFunc func(ctx context.Context, entry *repository.ErrorLogEntry) error
}

func (m *MockErrorLogStore) Append(ctx context.Context, entry *repository.ErrorLogEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.entries = append(m.entries, entry)
	return nil
}

// fakeClock returns a fixed time
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }
