package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/i18n"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/repository"
)

// AuditOrderStatus titles store failures while building the status view.
const AuditOrderStatus = "Order Status Error"

// Accepted start_time_prep layouts. Fractional seconds are accepted after
// the seconds field by the first layout.
var startTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// KOTStore reads kitchen order tickets.
type KOTStore interface {
	// ListByTableAndInvoice returns tickets newest first. Items may be
	// attached; when they are nil GetItems is consulted.
	ListByTableAndInvoice(ctx context.Context, table, invoice string) ([]*repository.KOT, error)
	GetItems(ctx context.Context, kotName string) ([]*repository.KOTItem, error)
}

// OrderStatus is the kitchen progress of one ticket.
type OrderStatus struct {
	OrderID       string
	Table         string
	Invoice       string
	ElapsedTime   float64 // minutes
	RemainingTime float64 // minutes
	OrderStatus   string
	Items         []OrderItemStatus
	Type          string
}

// OrderItemStatus is the readiness of one ticket line.
type OrderItemStatus struct {
	ItemName        string
	Quantity        int
	PreparationTime int
	IsReady         bool
}

// OrderStatusService derives per ticket timing and readiness for a table.
type OrderStatusService struct {
	kots     KOTStore
	audit    AuditSink
	messages *i18n.Translator
	clock    Clock
	location *time.Location
	log      *logger.Logger
}

// NewOrderStatusService creates a new order status service. Ticket dates and
// start times are interpreted in location.
func NewOrderStatusService(
	kots KOTStore,
	audit AuditSink,
	messages *i18n.Translator,
	clock Clock,
	location *time.Location,
	log *logger.Logger,
) *OrderStatusService {
	if location == nil {
		location = time.Local
	}
	return &OrderStatusService{
		kots:     kots,
		audit:    audit,
		messages: messages,
		clock:    clock,
		location: location,
		log:      log,
	}
}

// GetOrderStatus reports every ticket of the table and invoice, newest first.
// Missing arguments and an empty ticket list fail with *OrderStatusError;
// store failures return a coded internal error.
func (s *OrderStatusService) GetOrderStatus(ctx context.Context, rc RequestContext, table, invoice string) ([]OrderStatus, error) {
	if table == "" || invoice == "" {
		return nil, &OrderStatusError{
			Kind:    KindMissingParameter,
			Message: s.messages.Sprintf(rc.Locale, i18n.MsgMissingParameter),
		}
	}

	kots, err := s.kots.ListByTableAndInvoice(ctx, table, invoice)
	if err != nil {
		return nil, s.storeError(ctx, rc, fmt.Sprintf("list kots for table %s invoice %s", table, invoice), err)
	}
	if len(kots) == 0 {
		return nil, &OrderStatusError{
			Kind:    KindNoOrdersFound,
			Message: s.messages.Sprintf(rc.Locale, i18n.MsgNoOrdersFound),
		}
	}

	now := s.clock.Now()
	statuses := make([]OrderStatus, 0, len(kots))
	for _, kot := range kots {
		elapsed, remaining := s.timing(ctx, kot, now)

		lines := kot.Items
		if lines == nil {
			lines, err = s.kots.GetItems(ctx, kot.Name)
			if err != nil {
				return nil, s.storeError(ctx, rc, fmt.Sprintf("get items of kot %s", kot.Name), err)
			}
		}

		// A ticket without lines counts as served.
		allReady := true
		items := make([]OrderItemStatus, 0, len(lines))
		for _, line := range lines {
			if !line.Striked {
				allReady = false
			}
			items = append(items, OrderItemStatus{
				ItemName:        line.ItemName,
				Quantity:        line.Quantity,
				PreparationTime: line.PreparationTime,
				IsReady:         line.Striked,
			})
		}

		status := kot.OrderStatus
		if allReady {
			status = repository.OrderStatusServed
		}

		statuses = append(statuses, OrderStatus{
			OrderID:       kot.Name,
			Table:         kot.Table,
			Invoice:       kot.Invoice,
			ElapsedTime:   round2(elapsed),
			RemainingTime: round2(remaining),
			OrderStatus:   status,
			Items:         items,
			Type:          kot.Type,
		})
	}

	return statuses, nil
}

// timing returns elapsed and remaining minutes. A ticket that has not
// started, or whose start cannot be parsed, reports zero for both.
func (s *OrderStatusService) timing(ctx context.Context, kot *repository.KOT, now time.Time) (float64, float64) {
	start, ok, err := startOfPreparation(kot, s.location)
	if err != nil {
		s.log.Warn().Err(err).
			Str("kot", kot.Name).
			Msg("Cannot parse KOT start time, treating as not started")
		s.audit.LogError(ctx, AuditTimestampParse, fmt.Sprintf("kot %s: %v", kot.Name, err))
		return 0, 0
	}
	if !ok {
		return 0, 0
	}

	elapsed := now.Sub(start).Minutes()
	remaining := math.Max(0, float64(kot.PreparationTime)-elapsed)
	return elapsed, remaining
}

// startOfPreparation combines the ticket date and start time. ok is false
// when no start time is recorded.
func startOfPreparation(kot *repository.KOT, loc *time.Location) (time.Time, bool, error) {
	if kot.StartTimePrep == nil || strings.TrimSpace(*kot.StartTimePrep) == "" {
		return time.Time{}, false, nil
	}
	if kot.Date == nil || strings.TrimSpace(*kot.Date) == "" {
		return time.Time{}, false, fmt.Errorf("start time %q has no date", *kot.StartTimePrep)
	}

	value := strings.TrimSpace(*kot.Date) + " " + strings.TrimSpace(*kot.StartTimePrep)
	var lastErr error
	for _, layout := range startTimeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, true, nil
		}
		lastErr = err
	}
	return time.Time{}, false, fmt.Errorf("parse start time %q: %w", value, lastErr)
}

func (s *OrderStatusService) storeError(ctx context.Context, rc RequestContext, what string, err error) error {
	s.audit.LogError(ctx, AuditOrderStatus, fmt.Sprintf("%s: %v", what, err))
	return errors.Wrap(err, errors.ErrCodeInternal, s.messages.Sprintf(rc.Locale, i18n.MsgOrderStatusFailed))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
