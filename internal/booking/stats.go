package booking

import (
	"sort"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

const (
	topSpacesLimit = 5
	topDaysLimit   = 7
)

// SpaceCount is one entry of the most-booked spaces ranking.
type SpaceCount struct {
	SpaceID int64 `json:"spaceId"`
	Count   int   `json:"count"`
}

// DayCount is one entry of the busiest days ranking.
type DayCount struct {
	Date  calendar.Date `json:"date"`
	Count int           `json:"count"`
}

// Stats summarizes the reservations of a period.
type Stats struct {
	From              calendar.Date        `json:"from"`
	To                calendar.Date        `json:"to"`
	Total             int                  `json:"totalReservations"`
	ByStatus          map[model.Status]int `json:"byStatus"`
	TotalHours        float64              `json:"totalHoursReserved"`
	MostPopularSpaces []SpaceCount         `json:"mostPopularSpaces"`
	BusiestDays       []DayCount           `json:"busiestDays"`
}

// Aggregate folds reservations into Stats. Hours only count non-cancelled
// reservations. Rankings are by descending count; equal counts keep the
// order in which the space or day was first seen.
func Aggregate(reservations []model.Reservation, from, to calendar.Date) Stats {
	stats := Stats{
		From:     from,
		To:       to,
		Total:    len(reservations),
		ByStatus: make(map[model.Status]int, len(model.Statuses)),
	}
	for _, st := range model.Statuses {
		stats.ByStatus[st] = 0
	}

	var spaces []SpaceCount
	spaceIdx := make(map[int64]int)
	var days []DayCount
	dayIdx := make(map[calendar.Date]int)

	for i := range reservations {
		r := &reservations[i]
		stats.ByStatus[r.Status]++
		if r.Status != model.StatusCancelled {
			stats.TotalHours += r.Interval().Hours()
		}

		if idx, ok := spaceIdx[r.SpaceID]; ok {
			spaces[idx].Count++
		} else {
			spaceIdx[r.SpaceID] = len(spaces)
			spaces = append(spaces, SpaceCount{SpaceID: r.SpaceID, Count: 1})
		}

		if idx, ok := dayIdx[r.ReservationDate]; ok {
			days[idx].Count++
		} else {
			dayIdx[r.ReservationDate] = len(days)
			days = append(days, DayCount{Date: r.ReservationDate, Count: 1})
		}
	}

	sort.SliceStable(spaces, func(i, j int) bool { return spaces[i].Count > spaces[j].Count })
	sort.SliceStable(days, func(i, j int) bool { return days[i].Count > days[j].Count })

	stats.MostPopularSpaces = head(spaces, topSpacesLimit)
	stats.BusiestDays = head(days, topDaysLimit)
	return stats
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	if s == nil {
		return []T{}
	}
	return s
}
