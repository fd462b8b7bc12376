package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsServiceGenerate(t *testing.T) {
	loader := func(_ context.Context, ref string) (models.Booking, error) {
		return models.Booking{
			Reference:       ref,
			PassengerName:   "Ana Cruz",
			PassengerAge:    30,
			PassengerGender: "Female",
			SeatNumbers:     "Seat-1, Seat-2",
			SeatCount:       2,
			TotalFare:       25,
			Status:          "Confirmed",
			RouteName:       "North Line",
			OriginCity:      "Manila",
			DestinationCity: "Baguio",
			TravelDate:      time.Now().Format("2006-01-02"),
			DepartureTime:   "08:00:00",
		}, nil
	}
	svc := DocsService{Loader: loader}

	pdf, filename, err := svc.GenerateETicket(context.Background(), domain.ModeOnline, domain.RequestContext{}, "BK-ABC123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "ETICKET_BK-ABC123_Ana_Cruz.pdf", filename)
}

func TestDocsServiceRefusesPendingBooking(t *testing.T) {
	svc := DocsService{Loader: func(_ context.Context, ref string) (models.Booking, error) {
		return models.Booking{Reference: ref, Status: "Pending Sync", IsOffline: true}, nil
	}}

	_, _, err := svc.GenerateETicket(context.Background(), domain.ModeOffline, domain.RequestContext{}, "OFF-12345678")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}
