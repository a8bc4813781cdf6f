package main

import (
	"fmt"
	"os"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/render"
)

// Renders a sample day grid to grid.png for eyeballing layout changes
// without a database.
func main() {
	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	courts := []*model.Court{
		{ID: "c1", Name: "Pista 1", IsIndoor: true, IsActive: true},
		{ID: "c2", Name: "Pista 2", IsIndoor: true, IsActive: true},
		{ID: "c3", Name: "Pista 3", IsActive: true},
		{ID: "c4", Name: "Pista 4", IsActive: true},
	}

	bookings := []*model.CourtBooking{
		{
			ID:                 "b1",
			CourtID:            "c1",
			Date:               date,
			StartTime:          "09:30",
			EndTime:            "11:00",
			VerificationStatus: model.VerificationVerified,
			CurrentPlayers:     4,
			MaxPlayers:         4,
		},
		{
			ID:                 "b2",
			CourtID:            "c2",
			Date:               date,
			StartTime:          "17:00",
			EndTime:            "18:30",
			VerificationStatus: model.VerificationVerified,
			IsOpenMatch:        true,
			CurrentPlayers:     2,
			MaxPlayers:         4,
		},
		{
			ID:                 "b3",
			CourtID:            "c3",
			Date:               date,
			StartTime:          "20:00",
			EndTime:            "21:30",
			VerificationStatus: model.VerificationPending,
			CurrentPlayers:     1,
			MaxPlayers:         4,
		},
	}

	grid := model.BuildDayGrid(date, courts, bookings)

	imageData, err := render.GenerateDayGridImage(grid, courts)
	if err != nil {
		fmt.Printf("failed to render grid: %v\n", err)
		os.Exit(1)
	}

	filename := "grid.png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("failed to save file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("grid image saved to %s\n", filename)
	fmt.Printf("date: %s, courts: %d, bookings: %d\n", date.Format("02.01.2006"), len(courts), len(bookings))
}
