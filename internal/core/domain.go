package core

import (
	"errors"
	"time"
)

// Categories shared by sales and leads.
const (
	CategoryVehicle   Category = "vehicle"
	CategoryMotorbike Category = "motorbike"
	CategoryCarpet    Category = "carpet"
)

const (
	NoteIncident            NoteCategory = "Incident"
	NoteResourceUsage       NoteCategory = "Resource Usage"
	NoteClientQuery         NoteCategory = "Client Query"
	NoteDissatisfiedClients NoteCategory = "Dissatisfied Clients"
)

// DateLayout is the layout of every Date field.
const DateLayout = "2006-01-02"

type (
	// Category discriminates sales and leads by the asset being serviced.
	Category string

	NoteCategory string

	Sale struct {
		ID                   string   `json:"id,omitempty"`
		Date                 string   `json:"date" validate:"required,isodate"`
		Category             Category `json:"category" validate:"required,category"`
		Employee             string   `json:"employee" validate:"required"`
		ServiceType          string   `json:"serviceType,omitempty"`
		VehicleServiceType   string   `json:"vehicleServiceType,omitempty"`
		MotorbikeServiceType string   `json:"motorbikeServiceType,omitempty"`
		CarpetServiceType    string   `json:"carpetServiceType,omitempty"`
		Amount               Decimal  `json:"amount" validate:"required,decimal"`
		PaymentMethod        string   `json:"paymentMethod,omitempty"`
		VehicleModel         string   `json:"vehicleModel,omitempty"`
		NumberOfMotorbikes   Decimal  `json:"numberOfMotorbikes,omitempty" validate:"omitempty,decimal"`
		Size                 string   `json:"size,omitempty"`
		Description          string   `json:"description,omitempty"`
		Returned             bool     `json:"returned,omitempty"`
		ReturnedDate         string   `json:"returnedDate,omitempty"`
		CreatedAt            string   `json:"createdAt,omitempty"`
	}

	Employee struct {
		ID        string `json:"id,omitempty"`
		Name      string `json:"name" validate:"required"`
		Phone     string `json:"phone" validate:"required"`
		IDNumber  string `json:"idNumber,omitempty"`
		Photo     string `json:"photo,omitempty"`
		DateAdded string `json:"dateAdded,omitempty"`
		CreatedAt string `json:"createdAt,omitempty"`
	}

	Expense struct {
		ID          string  `json:"id,omitempty"`
		Description string  `json:"description" validate:"required"`
		Amount      Decimal `json:"amount" validate:"required,decimal"`
		Category    string  `json:"category,omitempty"`
		Date        string  `json:"date" validate:"required,isodate"`
		CreatedAt   string  `json:"createdAt,omitempty"`
	}

	Note struct {
		ID        string       `json:"id,omitempty"`
		Category  NoteCategory `json:"category" validate:"required,notecategory"`
		Content   string       `json:"content" validate:"required"`
		Date      string       `json:"date" validate:"required,isodate"`
		Time      string       `json:"time,omitempty"`
		CreatedAt string       `json:"createdAt,omitempty"`
	}

	// Lead is a prospective customer captured at the gate. Which asset
	// fields are required depends on AssetType.
	Lead struct {
		ID                 string   `json:"id,omitempty"`
		AssetType          Category `json:"assetType" validate:"required,category"`
		VehicleModel       string   `json:"vehicleModel,omitempty" validate:"required_if=AssetType vehicle"`
		RegistrationNumber string   `json:"registrationNumber,omitempty"`
		MotorbikeModel     string   `json:"motorbikeModel,omitempty" validate:"required_if=AssetType motorbike"`
		CarpetType         string   `json:"carpetType,omitempty" validate:"required_if=AssetType carpet"`
		CarpetSize         string   `json:"carpetSize,omitempty"`
		CustomerName       string   `json:"customerName" validate:"required"`
		CustomerPhone      string   `json:"customerPhone" validate:"required"`
		Date               string   `json:"date,omitempty" validate:"omitempty,isodate"`
		Timestamp          string   `json:"timestamp,omitempty"`
		CreatedAt          string   `json:"createdAt,omitempty"`
	}
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVehicle, CategoryMotorbike, CategoryCarpet:
		return true
	}
	return false
}

func (c NoteCategory) Valid() bool {
	switch c {
	case NoteIncident, NoteResourceUsage, NoteClientQuery, NoteDissatisfiedClients:
		return true
	}
	return false
}

// ResolvedServiceType returns the category-specific service type, falling
// back to the generic ServiceType.
func (s Sale) ResolvedServiceType() string {
	var specific string
	switch s.Category {
	case CategoryVehicle:
		specific = s.VehicleServiceType
	case CategoryMotorbike:
		specific = s.MotorbikeServiceType
	case CategoryCarpet:
		specific = s.CarpetServiceType
	}
	if specific != "" {
		return specific
	}
	return s.ServiceType
}

func (s Sale) Validate() error     { return validateStruct(s) }
func (e Employee) Validate() error { return validateStruct(e) }
func (e Expense) Validate() error  { return validateStruct(e) }
func (n Note) Validate() error     { return validateStruct(n) }
func (l Lead) Validate() error     { return validateStruct(l) }

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
