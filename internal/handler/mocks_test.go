package handler

import (
	"context"

	"github.com/ury-pos/pos-core/internal/repository"
	"github.com/ury-pos/pos-core/internal/service"
)

type MockVoidOperations struct {
	ValidateManagerFunc func(ctx context.Context, rc service.RequestContext, req service.ValidateManagerRequest) service.Result
	ProcessVoidItemFunc func(ctx context.Context, rc service.RequestContext, req service.ProcessVoidItemRequest) service.Result

	lastRC service.RequestContext
}

func (m *MockVoidOperations) ValidateManager(ctx context.Context, rc service.RequestContext, req service.ValidateManagerRequest) service.Result {
	m.lastRC = rc
	if m.ValidateManagerFunc != nil {
		return m.ValidateManagerFunc(ctx, rc, req)
	}
	return service.OK()
}

func (m *MockVoidOperations) ProcessVoidItem(ctx context.Context, rc service.RequestContext, req service.ProcessVoidItemRequest) service.Result {
	m.lastRC = rc
	if m.ProcessVoidItemFunc != nil {
		return m.ProcessVoidItemFunc(ctx, rc, req)
	}
	return service.OK()
}

type MockOrderStatusReader struct {
	GetOrderStatusFunc func(ctx context.Context, rc service.RequestContext, table, invoice string) ([]service.OrderStatus, error)
}

func (m *MockOrderStatusReader) GetOrderStatus(ctx context.Context, rc service.RequestContext, table, invoice string) ([]service.OrderStatus, error) {
	if m.GetOrderStatusFunc != nil {
		return m.GetOrderStatusFunc(ctx, rc, table, invoice)
	}
	return nil, nil
}

type MockErrorLogReader struct {
	ListRecentFunc func(ctx context.Context, limit int) ([]*repository.ErrorLogEntry, error)
}

func (m *MockErrorLogReader) ListRecent(ctx context.Context, limit int) ([]*repository.ErrorLogEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}
