package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the boarding ticket PDF for one cabin of a paid booking.
type DocsService struct {
	Store     repositories.Store
	Currency  string
	RequestID string
	Loader    func(ctx context.Context, bookingID string, ticketID int) (ticketDocData, error)
}

type ticketDocData struct {
	Booking   models.Booking
	Itinerary models.Itinerary
	Ticket    models.Ticket
	PerCabin  float64
	Currency  string
}

func (s DocsService) GenerateTicketPDF(ctx context.Context, bookingID string, ticketID int) ([]byte, string, error) {
	data, err := s.load(ctx, bookingID, ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_ticket", fmt.Sprintf("booking_id=%s ticket_id=%d", bookingID, ticketID))
	return buildTicketPDF(data)
}

func (s DocsService) load(ctx context.Context, bookingID string, ticketID int) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID, ticketID)
	}
	var out ticketDocData
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, false)
		if err != nil {
			return err
		}
		tickets, err := tx.ListTickets(ctx, b.ID)
		if err != nil {
			return err
		}
		found := false
		for _, tk := range tickets {
			if tk.ID == ticketID {
				out.Ticket, found = tk, true
				break
			}
		}
		if !found {
			return domain.NotFoundError{Resource: "ticket"}
		}
		out.Booking = b
		// the itinerary may have been removed since; the ticket still prints
		if it, err := tx.GetItinerary(ctx, b.DestinationID, false); err == nil {
			out.Itinerary = it
		} else if !domain.IsNotFound(err) {
			return err
		}
		if per, err := utils.PerCabinCost(b.TotalCost, b.NumberOfCabins); err == nil {
			out.PerCabin = per
		}
		return nil
	})
	out.Currency = s.Currency
	return out, err
}

func buildTicketPDF(d ticketDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Boarding Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOARDING TICKET")
	pdf.Ln(12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : %s", d.Booking.ID),
		fmt.Sprintf("Ticket         : %s", safe(d.Ticket.UUID, "-")),
		fmt.Sprintf("Cabin          : %s of %d", safe(d.Ticket.CabinNumber, "-"), d.Booking.NumberOfCabins),
		fmt.Sprintf("Passengers     : %d", d.Booking.NumberOfPassengers),
		fmt.Sprintf("Customer       : %s", safe(d.Booking.CustomerName, "-")),
		fmt.Sprintf("Ship           : %s", safe(d.Itinerary.ShipName, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(d.Booking.Origin, "-"), safe(d.Itinerary.Destination, "-")),
		fmt.Sprintf("Departure      : %s", safe(dateOnly(d.Ticket.DepartureDate), "-")),
		fmt.Sprintf("Nights         : %d", d.Itinerary.NumberOfNights),
		fmt.Sprintf("Return port    : %s", safe(d.Itinerary.ReturnPort, "-")),
		fmt.Sprintf("Cabin price    : %s", utils.FormatCurrency(d.Currency, d.PerCabin)),
		fmt.Sprintf("Status         : %s", d.Booking.Status),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	if len(d.Itinerary.PlacesVisited) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Ports of call")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(strings.Join(d.Itinerary.PlacesVisited, ", ")), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "This ticket is valid for one cabin. Present it at the boarding terminal."
	if d.Booking.Status == models.BookingCancelled {
		note = "This booking was cancelled. The ticket is kept for reference and is not valid for boarding."
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TICKET_%s_%s.pdf", safeFilenamePart(d.Booking.ID), safeFilenamePart(d.Ticket.CabinNumber))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
