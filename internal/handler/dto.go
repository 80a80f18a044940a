package handler

import (
	"github.com/shopspring/decimal"

	"github.com/ury-pos/pos-core/internal/service"
)

// Wire types shared by the HTTP and gRPC transports.

type ValidateManagerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	POSProfile string `json:"pos_profile"`
}

type VoidItemRef struct {
	Item string          `json:"item"`
	Rate decimal.Decimal `json:"rate"`
}

type VoidItemEntry struct {
	Item     *VoidItemRef     `json:"item"`
	Quantity *decimal.Decimal `json:"quantity"`
}

type ProcessVoidItemRequest struct {
	InvoiceNo      string          `json:"invoice_no"`
	Items          []VoidItemEntry `json:"items"`
	Accountability string          `json:"accountability"`
	Notes          string          `json:"notes"`
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	POSProfile     string          `json:"pos_profile"`
	SessionUser    string          `json:"session_user"`
}

type ResultResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

type GetOrderStatusRequest struct {
	Table   string `json:"table"`
	Invoice string `json:"invoice"`
}

type OrderItemStatus struct {
	ItemName        string `json:"item_name"`
	Quantity        int    `json:"quantity"`
	PreparationTime int    `json:"preparation_time"`
	IsReady         bool   `json:"is_ready"`
}

type OrderStatus struct {
	OrderID       string            `json:"order_id"`
	Table         string            `json:"table"`
	Invoice       string            `json:"invoice"`
	ElapsedTime   float64           `json:"elapsed_time"`
	RemainingTime float64           `json:"remaining_time"`
	OrderStatus   string            `json:"order_status"`
	Items         []OrderItemStatus `json:"items"`
	Type          string            `json:"type"`
}

// GetOrderStatusResponse carries either the orders or an error message.
type GetOrderStatusResponse struct {
	Orders []OrderStatus `json:"orders,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ErrorLogEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func (r ProcessVoidItemRequest) toService() service.ProcessVoidItemRequest {
	items := make([]service.VoidItemEntry, 0, len(r.Items))
	for _, e := range r.Items {
		entry := service.VoidItemEntry{Quantity: e.Quantity}
		if e.Item != nil {
			entry.Item = &service.VoidItemRef{Item: e.Item.Item, Rate: e.Item.Rate}
		}
		items = append(items, entry)
	}
	return service.ProcessVoidItemRequest{
		InvoiceNo:      r.InvoiceNo,
		Items:          items,
		Accountability: r.Accountability,
		Notes:          r.Notes,
		Username:       r.Username,
		Password:       r.Password,
		POSProfile:     r.POSProfile,
		SessionUser:    r.SessionUser,
	}
}

func (r ValidateManagerRequest) toService() service.ValidateManagerRequest {
	return service.ValidateManagerRequest{
		Username:   r.Username,
		Password:   r.Password,
		POSProfile: r.POSProfile,
	}
}

func resultToResponse(res service.Result) *ResultResponse {
	return &ResultResponse{Success: res.Success, Kind: string(res.Kind), Message: res.Message}
}

func orderStatusesToResponse(statuses []service.OrderStatus) []OrderStatus {
	out := make([]OrderStatus, 0, len(statuses))
	for _, s := range statuses {
		items := make([]OrderItemStatus, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, OrderItemStatus{
				ItemName:        it.ItemName,
				Quantity:        it.Quantity,
				PreparationTime: it.PreparationTime,
				IsReady:         it.IsReady,
			})
		}
		out = append(out, OrderStatus{
			OrderID:       s.OrderID,
			Table:         s.Table,
			Invoice:       s.Invoice,
			ElapsedTime:   s.ElapsedTime,
			RemainingTime: s.RemainingTime,
			OrderStatus:   s.OrderStatus,
			Items:         items,
			Type:          s.Type,
		})
	}
	return out
}
