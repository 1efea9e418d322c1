package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"safisha/internal/core"
)

// Row models mirror the hosted schema. JSON tags use the storage column
// names so rows convert through fields.Translator like the REST store.

// Base carries the columns every table shares.
type Base struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply an id.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type SaleRow struct {
	Base
	Date                 string       `gorm:"size:10;index" json:"date"`
	Category             string       `gorm:"size:16;index" json:"category"`
	Employee             string       `gorm:"index" json:"employee"`
	ServiceType          string       `json:"service_type"`
	VehicleServiceType   string       `json:"vehicle_service_type"`
	MotorbikeServiceType string       `json:"motorbike_service_type"`
	CarpetServiceType    string       `json:"carpet_service_type"`
	Amount               core.Decimal `gorm:"type:numeric" json:"amount"`
	PaymentMethod        string       `json:"payment_method"`
	VehicleModel         string       `json:"vehicle_model"`
	NumberOfMotorbikes   core.Decimal `gorm:"type:numeric" json:"number_of_motorbikes"`
	Size                 string       `json:"size"`
	Description          string       `json:"description"`
	Returned             bool         `gorm:"not null;default:false" json:"returned"`
	ReturnedDate         string       `json:"returned_date"`
}

func (SaleRow) TableName() string { return "sales" }

type EmployeeRow struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	Phone     string `json:"phone"`
	IDNumber  string `json:"id_number"`
	Photo     string `json:"photo"`
	DateAdded string `json:"date_added"`
}

func (EmployeeRow) TableName() string { return "employees" }

type ExpenseRow struct {
	Base
	Description string       `json:"description"`
	Amount      core.Decimal `gorm:"type:numeric" json:"amount"`
	Category    string       `json:"category"`
	Date        string       `gorm:"size:10;index" json:"date"`
}

func (ExpenseRow) TableName() string { return "expenses" }

type NoteRow struct {
	Base
	Category string `gorm:"size:32" json:"category"`
	Content  string `json:"content"`
	Date     string `gorm:"size:10" json:"date"`
	Time     string `gorm:"size:8" json:"time"`
}

func (NoteRow) TableName() string { return "notes" }

type LeadRow struct {
	Base
	AssetType          string `gorm:"size:16" json:"asset_type"`
	VehicleModel       string `json:"vehicle_model"`
	RegistrationNumber string `json:"registration_number"`
	MotorbikeModel     string `json:"motorbike_model"`
	CarpetType         string `json:"carpet_type"`
	CarpetSize         string `json:"carpet_size"`
	CustomerName       string `json:"customer_name"`
	CustomerPhone      string `json:"customer_phone"`
	Date               string `gorm:"size:10" json:"date"`
	Timestamp          string `json:"timestamp"`
}

func (LeadRow) TableName() string { return "leads" }
