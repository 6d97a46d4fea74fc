package models

import "time"

// ParcelStatus represents the delivery state of a parcel
type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "pending"
	ParcelStatusInTransit ParcelStatus = "in_transit"
	ParcelStatusDelivered ParcelStatus = "delivered"
	ParcelStatusCancelled ParcelStatus = "cancelled"
)

// ParcelType classifies the goods being sent
type ParcelType string

const (
	ParcelTypeDocument    ParcelType = "document"
	ParcelTypePackage     ParcelType = "package"
	ParcelTypeFragile     ParcelType = "fragile"
	ParcelTypeElectronics ParcelType = "electronics"
)

// IsValid reports whether t is a known parcel type
func (t ParcelType) IsValid() bool {
	switch t {
	case ParcelTypeDocument, ParcelTypePackage, ParcelTypeFragile, ParcelTypeElectronics:
		return true
	}
	return false
}

// Parcel is a delivery booked along a route for a travel date
type Parcel struct {
	ID              string        `json:"id" db:"id"`
	TrackingNumber  string        `json:"tracking_number" db:"tracking_number"`
	SenderID        string        `json:"sender_id" db:"sender_id"`
	SenderName      string        `json:"sender_name" db:"sender_name"`
	SenderPhone     string        `json:"sender_phone" db:"sender_phone"`
	ReceiverName    string        `json:"receiver_name" db:"receiver_name"`
	ReceiverPhone   string        `json:"receiver_phone" db:"receiver_phone"`
	ReceiverAddress string        `json:"receiver_address" db:"receiver_address"`
	RouteID         string        `json:"route_id" db:"route_id"`
	WeightKg        float64       `json:"weight_kg" db:"weight_kg"`
	ParcelType      ParcelType    `json:"parcel_type" db:"parcel_type"`
	DeliveryCost    float64       `json:"delivery_cost" db:"delivery_cost"`
	TravelDate      time.Time     `json:"travel_date" db:"travel_date"`
	Status          ParcelStatus  `json:"status" db:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ContactInfo is the sender or receiver of a parcel
type ContactInfo struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// CreateParcelRequest is the body of a parcel submission
type CreateParcelRequest struct {
	RouteID       string        `json:"route_id" binding:"required,uuid"`
	TravelDate    string        `json:"travel_date" binding:"required"` // YYYY-MM-DD
	Sender        ContactInfo   `json:"sender" binding:"required"`
	Receiver      ContactInfo   `json:"receiver" binding:"required"`
	WeightKg      float64       `json:"weight_kg" binding:"required,gt=0"`
	ParcelType    ParcelType    `json:"parcel_type" binding:"required"`
	PaymentChoice PaymentChoice `json:"payment_choice" binding:"required"`
	Card          *CardDetails  `json:"card,omitempty"`
}

// ParcelResult is returned after a successful parcel submission
type ParcelResult struct {
	TrackingNumber string        `json:"tracking_number"`
	DeliveryCost   float64       `json:"delivery_cost"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// ParcelQuote is the cost of a parcel before booking
type ParcelQuote struct {
	RouteID      string  `json:"route_id"`
	DistanceKm   float64 `json:"distance_km"`
	WeightKg     float64 `json:"weight_kg"`
	DeliveryCost float64 `json:"delivery_cost"`
}

// ParcelTracking is the public view of a parcel
type ParcelTracking struct {
	TrackingNumber string       `json:"tracking_number" db:"tracking_number"`
	Status         ParcelStatus `json:"status" db:"status"`
	Origin         string       `json:"origin" db:"origin"`
	Destination    string       `json:"destination" db:"destination"`
	TravelDate     time.Time    `json:"travel_date" db:"travel_date"`
}

// UpdateParcelStatusRequest is used by operators and admins
type UpdateParcelStatusRequest struct {
	Status ParcelStatus `json:"status" binding:"required"`
}
