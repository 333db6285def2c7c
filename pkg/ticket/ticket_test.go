package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/session"
)

func sampleTicket() Ticket {
	return Ticket{
		TicketID:          "AB12CD34",
		Timestamp:         "2026-08-30 10:00:00",
		PhoneNumber:       "+852 1234 5678",
		UserName:          "Jane Doe",
		DeviceType:        "laptop",
		BrandModel:        "ASUS ROG G614J",
		IssueType:         "hardware",
		Description:       "Screen cracked after drop",
		PartsNeeded:       "laptop_screen",
		ServiceFee:        100,
		PartsCost:         800,
		EstimatedTotal:    900,
		BookingType:       "dropoff",
		AppointmentStatus: "booked",
	}
}

func TestFromSession(t *testing.T) {
	f := session.Fields{
		TicketID:    "AB12CD34",
		UserName:    "Jane",
		PartsNeeded: []string{"laptop_screen", "laptop_battery"},
		Device: session.Device{
			Type:       "laptop",
			BrandModel: "ASUS",
		},
	}
	tk := FromSession(f)
	assert.Equal(t, "AB12CD34", tk.TicketID)
	assert.Equal(t, "laptop", tk.DeviceType)
	assert.Equal(t, "laptop_screen, laptop_battery", tk.PartsNeeded)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	want := sampleTicket()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, want.TicketID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.UpdateStatus(ctx, want.TicketID, "ready"))
	got, err = store.Get(ctx, want.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "ready", got.AppointmentStatus)

	_, err = store.Get(ctx, "NOPE0000")
	assert.Error(t, err)
	assert.Error(t, store.UpdateStatus(ctx, "NOPE0000", "ready"))
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sampleTicket()))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.UserName)
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tickets.json")
	sink := NewFile(path)

	first := sampleTicket()
	second := sampleTicket()
	second.TicketID = "EF56GH78"
	require.NoError(t, sink.Save(context.Background(), first))
	require.NoError(t, sink.Save(context.Background(), second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var tickets []Ticket
	require.NoError(t, json.Unmarshal(data, &tickets))
	require.Len(t, tickets, 2)
	assert.Equal(t, "AB12CD34", tickets[0].TicketID)
	assert.Equal(t, "EF56GH78", tickets[1].TicketID)
}

type flakySink struct {
	err   error
	saves int
}

func (f *flakySink) Save(context.Context, Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.saves++
	return nil
}

func TestMultiSinkToleratesPartialFailure(t *testing.T) {
	bad := &flakySink{err: errors.New("disk full")}
	good := &flakySink{}
	m := NewMultiSink(bad, good)

	require.NoError(t, m.Save(context.Background(), sampleTicket()))
	assert.Equal(t, 1, good.saves)

	allBad := NewMultiSink(bad, &flakySink{err: errors.New("also broken")})
	assert.Error(t, allBad.Save(context.Background(), sampleTicket()))
}
