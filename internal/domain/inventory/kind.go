package inventory

// Kind tags an inventory record with its entity type.
type Kind string

const (
	KindSubscriber       Kind = "Subscriber"
	KindSubscription     Kind = "Subscription"
	KindProduct          Kind = "Product"
	KindCFS              Kind = "CustomerFacingService"
	KindRFS              Kind = "ResourceFacingService"
	KindLogicalDevice    Kind = "LogicalDevice"
	KindLogicalInterface Kind = "LogicalInterface"
	KindLogicalComponent Kind = "LogicalComponent"
)

var validKinds = map[Kind]bool{
	KindSubscriber:       true,
	KindSubscription:     true,
	KindProduct:          true,
	KindCFS:              true,
	KindRFS:              true,
	KindLogicalDevice:    true,
	KindLogicalInterface: true,
	KindLogicalComponent: true,
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	return validKinds[k]
}

// DeviceType is the closed set of logical device families.
type DeviceType string

const (
	DeviceONT DeviceType = "ONT"
	DeviceCBM DeviceType = "CBM"
	DeviceSTB DeviceType = "STB"
	DeviceAP  DeviceType = "AP"
	DeviceSRX DeviceType = "SRX"
	DeviceOLT DeviceType = "OLT"
)

// devicePrefixes drives DeviceName. OLTs keep their network name as-is.
var devicePrefixes = map[DeviceType]string{
	DeviceONT: "ONT",
	DeviceCBM: "CBM",
	DeviceSTB: "STB_",
	DeviceAP:  "AP_",
	DeviceSRX: "SRX_",
	DeviceOLT: "",
}

func (t DeviceType) IsValid() bool {
	_, ok := devicePrefixes[t]
	return ok
}

func (t DeviceType) Prefix() string {
	return devicePrefixes[t]
}

// IsExclusive reports whether a device of this type belongs to exactly one service and
// therefore goes back to the free pool when that service is deleted.
func (t DeviceType) IsExclusive() bool {
	switch t {
	case DeviceAP, DeviceSTB, DeviceCBM, DeviceSRX:
		return true
	}
	return false
}

// ServiceLink names the access technology a subscription rides on.
type ServiceLink string

const (
	LinkONT        ServiceLink = "ONT"
	LinkSRX        ServiceLink = "SRX"
	LinkCableModem ServiceLink = "Cable_Modem"
)

func (l ServiceLink) IsValid() bool {
	switch l {
	case LinkONT, LinkSRX, LinkCableModem:
		return true
	}
	return false
}

// DeviceType returns the CPE family terminating this link.
func (l ServiceLink) DeviceType() DeviceType {
	switch l {
	case LinkSRX:
		return DeviceSRX
	case LinkCableModem:
		return DeviceCBM
	default:
		return DeviceONT
	}
}

// Device and port state vocabulary.
const (
	StateAvailable = "Available"
	StateAllocated = "Allocated"
	StateActive    = "Active"
)

// Service status vocabulary.
const (
	StatusActive    = "Active"
	StatusSuspended = "Suspended"
	StatusInactive  = "Inactive"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusSuspended: true,
	StatusInactive:  true,
}

func IsValidStatus(s string) bool {
	return validStatuses[s]
}
