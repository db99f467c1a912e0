package models

// DayStatistics summarizes one day's bookings at a single location.
type DayStatistics struct {
	Date             string         `json:"date"`
	Location         string         `json:"location"`
	TotalBooked      int            `json:"totalBooked"`
	TotalSlots       int            `json:"totalSlots"`
	AvailableSlots   int            `json:"availableSlots"`
	UtilizationRate  string         `json:"utilizationRate"`
	ServiceBreakdown map[string]int `json:"serviceBreakdown"`
}
