package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	auditsvc "github.com/stickspnw/sticks-work-center/internal/service/audit"
	ordersvc "github.com/stickspnw/sticks-work-center/internal/service/order"
	settingsvc "github.com/stickspnw/sticks-work-center/internal/service/setting"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
	"github.com/stickspnw/sticks-work-center/pkg/initials"
)

// Orders is the order surface exports read from.
type Orders interface {
	Get(ctx context.Context, id string) (*entity.Order, error)
	ListFinished(ctx context.Context) ([]*entity.Order, error)
}

// Brander resolves the name printed on documents.
type Brander interface {
	GetBranding(ctx context.Context) (settingsvc.Branding, error)
}

// Service renders completed-order CSVs and per-order PDF sheets. All money
// figures come from stored line totals; exports never reprice.
type Service struct {
	orders   Orders
	branding Brander
	audit    *auditsvc.Service
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders   *ordersvc.Service
	Settings *settingsvc.Service
	Audit    *auditsvc.Service
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:   p.Orders,
		branding: p.Settings,
		audit:    p.Audit,
		logger:   p.Logger,
	}
}

// CompletedCSV renders all FINISHED orders as CSV and records the export in
// the audit log.
func (s *Service) CompletedCSV(ctx context.Context, rawInitials, actorID string) ([]byte, error) {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}

	orders, err := s.orders.ListFinished(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Order #", "Customer", "Created Date", "Finished Date", "Products", "Total"}); err != nil {
		return nil, errorbank.Internal("failed to render csv", errorbank.WithCause(err))
	}
	for _, o := range orders {
		names := make([]string, 0, len(o.LineItems))
		for _, item := range o.LineItems {
			names = append(names, fmt.Sprintf("%s x%d", item.ProductNameSnapshot, item.Qty))
		}
		finished := ""
		if o.FinishedAt != nil {
			finished = o.FinishedAt.Format("2006-01-02")
		}
		row := []string{
			o.OrderNumber,
			o.CustomerNameSnapshot,
			o.CreatedAt.Format("2006-01-02"),
			finished,
			strings.Join(names, "; "),
			strconv.FormatFloat(ordersvc.OrderTotal(o.LineItems), 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, errorbank.Internal("failed to render csv", errorbank.WithCause(err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errorbank.Internal("failed to render csv", errorbank.WithCause(err))
	}

	if s.audit != nil {
		s.audit.Record(ctx, auditsvc.Entry{
			ActorID:  actorID,
			Initials: code,
			Action:   entity.AuditOrdersExportedComplete,
			Details:  map[string]any{"count": len(orders)},
		})
	}
	return buf.Bytes(), nil
}

// OrderPDF renders one order as a printable sheet: branding header, customer
// snapshot and the line-item table. Override reasons and history stay
// internal and never print.
func (s *Service) OrderPDF(ctx context.Context, orderID string) ([]byte, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	heading := "Work Center"
	if branding, err := s.branding.GetBranding(ctx); err == nil {
		if branding.CompanyName != "" {
			heading = branding.CompanyName
		} else if branding.BrandName != "" {
			heading = branding.BrandName
		}
	} else {
		s.logger.Warn("branding lookup failed for pdf", zap.Error(err))
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Order %s", order.OrderNumber), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, heading, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Order %s  -  %s", order.OrderNumber, statusLabel(order.Status)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Created "+order.CreatedAt.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	if order.FinishedAt != nil {
		pdf.CellFormat(0, 6, "Completed "+order.FinishedAt.Format("Jan 2, 2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, order.CustomerNameSnapshot, "", 1, "L", false, 0, "")
	for _, line := range []string{order.CustomerPhoneSnapshot, order.CustomerEmailSnapshot, order.CustomerShippingAddressSnapshot} {
		if line != "" {
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Line Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range order.LineItems {
		pdf.CellFormat(90, 7, item.ProductNameSnapshot, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(item.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(item.UnitPriceFinal), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(item.LineTotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, money(ordersvc.OrderTotal(order.LineItems)), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errorbank.Internal("failed to render pdf", errorbank.WithCause(err))
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func statusLabel(status entity.OrderStatus) string {
	switch status {
	case entity.OrderStatusWIP:
		return "Work In Progress"
	case entity.OrderStatusFinished:
		return "Completed"
	case entity.OrderStatusDeleted:
		return "Deleted"
	}
	return string(status)
}

// FilenameTimestamp names downloaded files consistently.
func FilenameTimestamp(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
