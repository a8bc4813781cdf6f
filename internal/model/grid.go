package model

import "time"

// GridCell is one (court, time) cell of a day's booking grid.
type GridCell struct {
	CourtID        string          `json:"court_id"`
	CourtName      string          `json:"court_name"`
	Time           string          `json:"time"`
	Status         CourtSlotStatus `json:"status"`
	BookingID      string          `json:"booking_id,omitempty"`
	IsOpenMatch    bool            `json:"is_open_match,omitempty"`
	CurrentPlayers int             `json:"current_players,omitempty"`
	MaxPlayers     int             `json:"max_players,omitempty"`
}

// DayGrid is the derived court × time-slot matrix for one date.
type DayGrid struct {
	Date      time.Time  `json:"date"`
	TimeSlots []string   `json:"time_slots"`
	Cells     []GridCell `json:"cells"`
}

// BuildDayGrid derives the grid from the active bookings of a date. Cell
// status follows SlotStatusFor; cells without a booking are available.
func BuildDayGrid(date time.Time, courts []*Court, bookings []*CourtBooking) *DayGrid {
	byKey := make(map[string]*CourtBooking, len(bookings))
	for _, b := range bookings {
		byKey[b.CourtID+"|"+b.StartTime] = b
	}

	grid := &DayGrid{
		Date:      date,
		TimeSlots: CanonicalTimeSlots,
		Cells:     make([]GridCell, 0, len(courts)*len(CanonicalTimeSlots)),
	}

	for _, court := range courts {
		for _, slot := range CanonicalTimeSlots {
			cell := GridCell{
				CourtID:   court.ID,
				CourtName: court.Name,
				Time:      slot,
				Status:    CourtSlotAvailable,
			}
			if b, ok := byKey[court.ID+"|"+slot]; ok {
				cell.Status = SlotStatusFor(b)
				if cell.Status != CourtSlotAvailable {
					cell.BookingID = b.ID
					cell.IsOpenMatch = b.IsOpenMatch
					cell.CurrentPlayers = b.CurrentPlayers
					cell.MaxPlayers = b.MaxPlayers
				}
			}
			grid.Cells = append(grid.Cells, cell)
		}
	}

	return grid
}
