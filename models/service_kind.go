package models

// ServiceKind identifies one ancillary service a booking may request.
type ServiceKind string

const (
	ServiceStaff     ServiceKind = "Staff"
	ServiceEquipment ServiceKind = "Equipment"
	ServiceCatering  ServiceKind = "Catering"
	ServiceCleaning  ServiceKind = "Cleaning"
	ServiceSecurity  ServiceKind = "Security"
	ServiceSetup     ServiceKind = "Setup"
)

// AllServiceKinds lists every service kind in a fixed order, used when
// building composite state regions and when encoding flag sets.
var AllServiceKinds = []ServiceKind{
	ServiceStaff,
	ServiceEquipment,
	ServiceCatering,
	ServiceCleaning,
	ServiceSecurity,
	ServiceSetup,
}

// IsValidServiceKind reports whether s names a known service kind.
func IsValidServiceKind(s string) bool {
	for _, k := range AllServiceKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}
