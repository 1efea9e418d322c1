package core

// Choices offered on the entry screens. Records may carry values outside
// these lists; they are suggestions, not constraints.
var (
	VehicleServiceTypes = []string{
		"Exterior Wash", "Interior Clean", "Full Detail", "Vacuum", "Buffing", "Waxing", "Polish",
	}
	MotorbikeServiceTypes = []string{
		"Basic Wash", "Deep Clean", "Polish", "Chain Lubrication", "Full Detail", "Engine Clean",
	}
	CarpetServiceTypes = []string{
		"Deep Clean", "Stain Removal", "Dry Cleaning", "Steam Cleaning", "Odor Removal", "Scotchgard Protection",
	}
	CarpetSizes = []string{
		"3x5", "4x6", "5x7", "6x9", "8x10", "9x12", "10x14", "12x15", "Custom Size",
	}
	PaymentMethods = []string{"Cash", "M-Pesa", "Card", "Bank Transfer"}

	NoteCategories = []NoteCategory{
		NoteIncident, NoteResourceUsage, NoteClientQuery, NoteDissatisfiedClients,
	}
)

// ServiceLabel is the top-level service name recorded for a category.
func ServiceLabel(c Category) string {
	switch c {
	case CategoryVehicle:
		return "Vehicle Wash"
	case CategoryMotorbike:
		return "Motorbike Wash"
	case CategoryCarpet:
		return "Carpet/Rug Wash"
	}
	return ""
}

// ServiceTypes returns the service choices for a category.
func ServiceTypes(c Category) []string {
	switch c {
	case CategoryVehicle:
		return VehicleServiceTypes
	case CategoryMotorbike:
		return MotorbikeServiceTypes
	case CategoryCarpet:
		return CarpetServiceTypes
	}
	return nil
}
