package models

import "time"

// Appointment statuses. Confirmed appointments block their interval;
// cancelled ones are retained for audit but free the interval.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// DateLayout is the calendar-day format used throughout the system.
const DateLayout = "2006-01-02"

// CustomerInfo is the customer attribute snapshot collected during a call.
// Fields fill in incrementally as the conversation progresses; the zero
// value of a field means it has not been provided yet.
type CustomerInfo struct {
	Location      string `bson:"location,omitempty" json:"location,omitempty"`
	FullName      string `bson:"fullName,omitempty" json:"fullName,omitempty"`
	PhoneNumber   string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Email         string `bson:"email,omitempty" json:"email,omitempty"`
	CarMake       string `bson:"carMake,omitempty" json:"carMake,omitempty"`
	CarModel      string `bson:"carModel,omitempty" json:"carModel,omitempty"`
	CarYear       int    `bson:"carYear,omitempty" json:"carYear,omitempty"`
	ServiceType   string `bson:"serviceType,omitempty" json:"serviceType,omitempty"`
	LoyaltyMember *bool  `bson:"loyaltyMember,omitempty" json:"loyaltyMember,omitempty"`
	PreferredDate string `bson:"preferredDate,omitempty" json:"preferredDate,omitempty"` // "2006-01-02"
	PreferredTime int    `bson:"preferredTime,omitempty" json:"preferredTime,omitempty"` // minutes from midnight, 0 = unset
}

// Merge copies the non-empty fields of update into c. Fields already set in
// c are kept unless force is true, so a later partial update never clobbers
// an earlier correction by accident.
func (c *CustomerInfo) Merge(update CustomerInfo, force bool) {
	if update.Location != "" && (force || c.Location == "") {
		c.Location = update.Location
	}
	if update.FullName != "" && (force || c.FullName == "") {
		c.FullName = update.FullName
	}
	if update.PhoneNumber != "" && (force || c.PhoneNumber == "") {
		c.PhoneNumber = update.PhoneNumber
	}
	if update.Email != "" && (force || c.Email == "") {
		c.Email = update.Email
	}
	if update.CarMake != "" && (force || c.CarMake == "") {
		c.CarMake = update.CarMake
	}
	if update.CarModel != "" && (force || c.CarModel == "") {
		c.CarModel = update.CarModel
	}
	if update.CarYear != 0 && (force || c.CarYear == 0) {
		c.CarYear = update.CarYear
	}
	if update.ServiceType != "" && (force || c.ServiceType == "") {
		c.ServiceType = update.ServiceType
	}
	if update.LoyaltyMember != nil && (force || c.LoyaltyMember == nil) {
		c.LoyaltyMember = update.LoyaltyMember
	}
	if update.PreferredDate != "" && (force || c.PreferredDate == "") {
		c.PreferredDate = update.PreferredDate
	}
	if update.PreferredTime != 0 && (force || c.PreferredTime == 0) {
		c.PreferredTime = update.PreferredTime
	}
}

// MissingRequired returns the names of required booking fields still unset.
// Email and vehicle details are collected but not required for scheduling.
func (c CustomerInfo) MissingRequired() []string {
	var missing []string
	if c.Location == "" {
		missing = append(missing, "location")
	}
	if c.FullName == "" {
		missing = append(missing, "fullName")
	}
	if c.PhoneNumber == "" {
		missing = append(missing, "phoneNumber")
	}
	if c.ServiceType == "" {
		missing = append(missing, "serviceType")
	}
	if c.PreferredDate == "" {
		missing = append(missing, "date")
	}
	if c.PreferredTime == 0 {
		missing = append(missing, "time")
	}
	return missing
}

// Appointment is a confirmed (or later cancelled) reservation. Created only
// by the booking coordinator; never deleted, only cancelled.
type Appointment struct {
	ID          string       `bson:"id" json:"id"`
	Date        string       `bson:"date" json:"date"` // "2006-01-02"
	Start       int          `bson:"start" json:"start"`
	End         int          `bson:"end" json:"end"`
	Location    string       `bson:"location" json:"location"`
	ServiceType string       `bson:"serviceType" json:"serviceType"`
	Customer    CustomerInfo `bson:"customer" json:"customer"`
	Status      string       `bson:"status" json:"status"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
}

// Interval returns the appointment's occupied slot.
func (a Appointment) Interval() TimeSlot {
	return TimeSlot{Start: a.Start, End: a.End}
}
