// Package ticket persists completed intake records.
package ticket

import (
	"context"
	"strings"

	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/session"
)

// Ticket is the flat record written out when a session completes. The column
// set matches the workshop's booking sheet.
type Ticket struct {
	TicketID          string  `json:"ticket_id"`
	Timestamp         string  `json:"timestamp"`
	PhoneNumber       string  `json:"phone_number"`
	UserName          string  `json:"user_name"`
	DeviceType        string  `json:"device_type"`
	BrandModel        string  `json:"brandmodel"`
	AdditionalInfo    string  `json:"additional_info"`
	IssueType         string  `json:"issue_type"`
	Description       string  `json:"description"`
	Photos            string  `json:"photos"`
	PartsNeeded       string  `json:"parts_needed"`
	ServiceFee        float64 `json:"service_fee"`
	PartsCost         float64 `json:"parts_cost"`
	EstimatedTotal    float64 `json:"estimated_total"`
	BookingType       string  `json:"booking_type"`
	AppointmentStatus string  `json:"appointment_status"`
}

// FromSession snapshots a session's fields into a ticket record.
func FromSession(f session.Fields) Ticket {
	return Ticket{
		TicketID:          f.TicketID,
		Timestamp:         f.Timestamp,
		PhoneNumber:       f.PhoneNumber,
		UserName:          f.UserName,
		DeviceType:        f.Device.Type,
		BrandModel:        f.Device.BrandModel,
		AdditionalInfo:    f.Device.AdditionalInfo,
		IssueType:         f.IssueType,
		Description:       f.Description,
		Photos:            f.Photos,
		PartsNeeded:       strings.Join(f.PartsNeeded, ", "),
		ServiceFee:        f.ServiceFee,
		PartsCost:         f.PartsCost,
		EstimatedTotal:    f.EstimatedTotal,
		BookingType:       f.BookingType,
		AppointmentStatus: f.AppointmentStatus,
	}
}

// Sink stores completed tickets.
type Sink interface {
	Save(ctx context.Context, t Ticket) error
}

// Store extends Sink with retrieval, for the ticket lookup API.
type Store interface {
	Sink
	Get(ctx context.Context, ticketID string) (Ticket, error)
	UpdateStatus(ctx context.Context, ticketID, status string) error
}

// MultiSink fans a ticket out to several sinks. A failing sink is logged and
// skipped; Save fails only when every sink fails.
type MultiSink struct {
	sinks  []Sink
	logger *logx.Logger
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logx.NewLogger("ticket")}
}

func (m *MultiSink) Save(ctx context.Context, t Ticket) error {
	var lastErr error
	saved := 0
	for _, s := range m.sinks {
		if err := s.Save(ctx, t); err != nil {
			m.logger.Error("ticket %s: sink %T failed: %v", t.TicketID, s, err)
			lastErr = err
			continue
		}
		saved++
	}
	if saved == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}
