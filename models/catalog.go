package models

// ServiceType describes one bookable service. Duration is the active work
// time and WrapUp the bay clean-up time, both in minutes; a slot occupies
// Duration+WrapUp on the calendar.
type ServiceType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	WrapUp   int    `json:"wrapUp"`
}

// TotalDuration returns the full calendar length of a slot for this service.
func (s ServiceType) TotalDuration() int {
	return s.Duration + s.WrapUp
}

// ServiceTypeIDs lists the catalog in presentation order.
var ServiceTypeIDs = []string{"oil_change", "tire_rotation", "general_service"}

// ServiceTypes is the process-wide service catalog, read-only after init.
var ServiceTypes = map[string]ServiceType{
	"oil_change":      {ID: "oil_change", Name: "Oil Change", Duration: 45, WrapUp: 15},
	"tire_rotation":   {ID: "tire_rotation", Name: "Seasonal Tire Rotation", Duration: 45, WrapUp: 15},
	"general_service": {ID: "general_service", Name: "General Check-up/Repair", Duration: 45, WrapUp: 15},
}

// DefaultServiceTypeID is assumed when an availability query names no service.
const DefaultServiceTypeID = "oil_change"

// ServiceTypeByID looks up a service type, falling back to the default when
// id is empty.
func ServiceTypeByID(id string) (ServiceType, bool) {
	if id == "" {
		id = DefaultServiceTypeID
	}
	st, ok := ServiceTypes[id]
	return st, ok
}

// Locations is the fixed set of store locations accepting appointments.
var Locations = []string{"downtown", "north_york", "scarborough", "etobicoke"}

// ValidLocation reports whether loc belongs to the location catalog.
func ValidLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// BusinessHours bounds the booking day. All values are minutes from
// midnight. LastAppointmentStart is a cutoff distinct from ClosingTime so a
// slot's wrap-up always finishes before the doors close.
type BusinessHours struct {
	Start                int `json:"start"`
	LastAppointmentStart int `json:"lastAppointmentStart"`
	ClosingTime          int `json:"closingTime"`
}

// DefaultBusinessHours returns the standard 08:00-17:00 day with the last
// appointment starting at 16:00.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Start:                8 * 60,
		LastAppointmentStart: 16 * 60,
		ClosingTime:          17 * 60,
	}
}
