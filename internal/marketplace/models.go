package marketplace

import (
	"encoding/json"
	"time"
)

// ID accepts both "id" style strings and numeric ids from the API.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Tenant as returned by the landlord's tenant list.
type Tenant struct {
	ID         ID      `json:"id,omitempty"`
	TenantID   ID      `json:"tenantId,omitempty"`
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile"`
	Email      string  `json:"email,omitempty"`
	Aadhaar    string  `json:"aadhaar,omitempty"`
	PropertyID ID      `json:"propertyId,omitempty"`
	RoomID     ID      `json:"roomId,omitempty"`
	BedID      ID      `json:"bedId,omitempty"`
	RentAmount float64 `json:"rentAmount"`
}

// Key returns whichever id the API filled in.
func (t Tenant) Key() string {
	if t.TenantID != "" {
		return string(t.TenantID)
	}
	return string(t.ID)
}

// Property is a landlord or seller listing.
type Property struct {
	ID         ID       `json:"_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	Images     []string `json:"images,omitempty"`
	TotalRooms int      `json:"totalRooms"`
	TotalBeds  int      `json:"totalBeds"`
	Price      float64  `json:"price"`
}

// Plan is the populated plan of a subscription.
type Plan struct {
	ID      ID      `json:"_id"`
	Name    string  `json:"name"`
	MaxBeds int     `json:"maxBeds"`
	Price   float64 `json:"price"`
}

// Subscription of a landlord to a plan.
type Subscription struct {
	ID        ID        `json:"_id"`
	Plan      Plan      `json:"planId"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	BedsUsed  int       `json:"bedsUsed"`
}

const SubscriptionActive = "active"

func (s Subscription) Active() bool {
	return s.Status == SubscriptionActive
}

// Accommodation is a tenant's property, room and bed.
type Accommodation struct {
	PropertyID   ID        `json:"propertyId"`
	PropertyName string    `json:"propertyName"`
	RoomID       ID        `json:"roomId"`
	BedID        ID        `json:"bedId"`
	RentAmount   float64   `json:"rentAmount"`
	MoveInDate   time.Time `json:"moveInDate"`
}

// Complaint raised by a tenant. Its status is always set by the server.
type Complaint struct {
	ComplaintID ID     `json:"complaintId"`
	Subject     string `json:"subject"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	OTP         string `json:"otp,omitempty"`
}

// Due is one bill a tenant owes or has paid.
type Due struct {
	BillID  ID        `json:"billId"`
	Type    string    `json:"type"`
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"dueDate"`
	Status  string    `json:"status"`
}

func (d Due) Outstanding() bool {
	return d.Status != "paid"
}

// ForecastEntry is one month of a sub-owner's collections forecast.
type ForecastEntry struct {
	Month     string  `json:"month"`
	Expected  float64 `json:"expected"`
	Collected float64 `json:"collected"`
}

func (f ForecastEntry) Pending() float64 {
	return f.Expected - f.Collected
}

// Profile of the logged in user.
type Profile struct {
	ID   ID     `json:"_id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewTenant is the add-tenant form.
type NewTenant struct {
	Name       string  `json:"name" validate:"required"`
	Mobile     string  `json:"mobile" validate:"required,mobile"`
	Email      string  `json:"email,omitempty" validate:"omitempty,email"`
	Aadhaar    string  `json:"aadhaar,omitempty" validate:"omitempty,aadhaar"`
	PropertyID string  `json:"propertyId" validate:"required"`
	RoomID     string  `json:"roomId" validate:"required"`
	BedID      string  `json:"bedId" validate:"required"`
	RentAmount float64 `json:"rentAmount" validate:"gt=0"`
}

// ComplaintStatusUpdate changes the status of a complaint.
type ComplaintStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// AadhaarOTPRequest starts an Aadhaar KYC check.
type AadhaarOTPRequest struct {
	Aadhaar string `json:"aadhaarNumber" validate:"required,aadhaar"`
}

// AadhaarOTPSubmit completes an Aadhaar KYC check.
type AadhaarOTPSubmit struct {
	ReferenceID string `json:"referenceId" validate:"required"`
	OTP         string `json:"otp" validate:"required,otp"`
}

// OTPIssued is the answer to AadhaarOTPRequest.
type OTPIssued struct {
	ReferenceID string `json:"referenceId"`
	Message     string `json:"message"`
}

// KYCResult is the answer to AadhaarOTPSubmit.
type KYCResult struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}
