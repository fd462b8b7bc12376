package services

import (
	"bytes"
	"context"
	"fmt"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders a PDF e-ticket for a booking.
type DocsService struct {
	Bookings  BookingService
	RequestID string
	// Loader overrides the booking lookup in tests.
	Loader func(ctx context.Context, ref string) (models.Booking, error)
}

// GenerateETicket returns the PDF bytes and a download filename. Bookings
// still waiting for sync get no ticket.
func (s DocsService) GenerateETicket(ctx context.Context, mode domain.Mode, caller domain.RequestContext, ref string) ([]byte, string, error) {
	b, err := s.load(ctx, mode, caller, ref)
	if err != nil {
		return nil, "", err
	}
	if b.IsOffline || b.Status != string(domain.StatusConfirmed) {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "e-ticket is available once the booking is confirmed"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", "reference="+b.Reference)
	return buildETicketPDF(b)
}

func (s DocsService) load(ctx context.Context, mode domain.Mode, caller domain.RequestContext, ref string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ref)
	}
	return s.Bookings.Get(ctx, mode, caller, ref)
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.Reference, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Reference : %s", b.Reference),
		fmt.Sprintf("Passenger         : %s", utils.FirstNonEmpty(b.PassengerName, "-")),
		fmt.Sprintf("Age / Gender      : %d / %s", b.PassengerAge, utils.FirstNonEmpty(b.PassengerGender, "-")),
		fmt.Sprintf("Route             : %s", utils.FirstNonEmpty(b.RouteName, "-")),
		fmt.Sprintf("From -> To        : %s -> %s", utils.FirstNonEmpty(b.OriginCity, "-"), utils.FirstNonEmpty(b.DestinationCity, "-")),
		fmt.Sprintf("Travel Date       : %s", utils.FirstNonEmpty(b.TravelDate, "-")),
		fmt.Sprintf("Departure         : %s", utils.FirstNonEmpty(utils.TimeHM(b.DepartureTime), "-")),
		fmt.Sprintf("Bus               : %s", utils.FirstNonEmpty(b.BusNumber, "-")),
		fmt.Sprintf("Seats             : %s", utils.FirstNonEmpty(b.SeatNumbers, fmt.Sprint(b.SeatCount))),
		fmt.Sprintf("Total Fare        : %s", utils.FormatCurrency(b.TotalFare)),
		fmt.Sprintf("Status            : %s", utils.FirstNonEmpty(b.Status, "-")),
		fmt.Sprintf("Booked At         : %s", utils.FormatDateTime(b.BookingDate)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this e-ticket together with a valid ID when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render e-ticket", Err: err}
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", utils.SafeFilenamePart(b.Reference), utils.SafeFilenamePart(b.PassengerName))
	return buf.Bytes(), filename, nil
}
