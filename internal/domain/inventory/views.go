package inventory

import (
	"fmt"
	"strconv"
)

func viewOf(e *Entity, kind Kind) error {
	if e == nil {
		return fmt.Errorf("%w: nil %s", ErrKindMismatch, kind)
	}
	if e.kind != kind {
		return fmt.Errorf("%w: %q is a %s, want %s", ErrKindMismatch, e.name, e.kind, kind)
	}
	return nil
}

// Subscriber is the root identity record of an account holder.
type Subscriber struct{ *Entity }

func AsSubscriber(e *Entity) (Subscriber, error) {
	return Subscriber{e}, viewOf(e, KindSubscriber)
}

func (s Subscriber) AccountNumber() string { return s.Property(PropAccountNumber) }
func (s Subscriber) HouseholdID() string   { return s.Property(PropHouseholdID) }
func (s Subscriber) Type() string          { return s.Property(PropType) }

// Subscription links a Subscriber to the products of one purchased service.
type Subscription struct{ *Entity }

func AsSubscription(e *Entity) (Subscription, error) {
	return Subscription{e}, viewOf(e, KindSubscription)
}

func (s Subscription) SubscriberName() string { return s.Parent() }
func (s Subscription) ServiceID() string      { return s.Property(PropServiceID) }
func (s Subscription) SerialNo() string       { return s.Property(PropSerialNo) }
func (s Subscription) QoSProfile() string     { return s.Property(PropQoSProfile) }

func (s Subscription) ServiceLink() ServiceLink {
	return ServiceLink(s.Property(PropServiceLink))
}

// Services returns the product names of the service set.
func (s Subscription) Services() []string {
	return s.RefsOf(KindProduct)
}

// LinkProduct adds a product to the service set (union) and reports whether it changed.
func (s Subscription) LinkProduct(product string) bool {
	return s.AddRef(Ref{Kind: KindProduct, Name: product})
}

// VoiceNumbers returns the voice numbers carried by the subscription, in port order.
func (s Subscription) VoiceNumbers() []string {
	var out []string
	for _, key := range []string{PropVoipNumber1, PropVoipNumber2} {
		if v := s.Property(key); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Product is one service line of a subscription.
type Product struct{ *Entity }

func AsProduct(e *Entity) (Product, error) {
	return Product{e}, viewOf(e, KindProduct)
}

func (p Product) SubscriberName() string { return p.Parent() }
func (p Product) ProductType() string    { return p.Property(PropProductType) }

// CustomerFacingService uses exactly one Product.
type CustomerFacingService struct{ *Entity }

func AsCFS(e *Entity) (CustomerFacingService, error) {
	return CustomerFacingService{e}, viewOf(e, KindCFS)
}

func (c CustomerFacingService) ProductName() string   { return c.Parent() }
func (c CustomerFacingService) ServiceStatus() string { return c.Property(PropServiceStatus) }

// ResourceFacingService is used by one CFS and uses devices and interfaces.
type ResourceFacingService struct{ *Entity }

func AsRFS(e *Entity) (ResourceFacingService, error) {
	return ResourceFacingService{e}, viewOf(e, KindRFS)
}

func (r ResourceFacingService) CFSName() string       { return r.Parent() }
func (r ResourceFacingService) ServiceStatus() string { return r.Property(PropServiceStatus) }

func (r ResourceFacingService) Devices() []string {
	return r.RefsOf(KindLogicalDevice)
}

func (r ResourceFacingService) Interfaces() []string {
	return r.RefsOf(KindLogicalInterface)
}

// Use records that the RFS uses a device or interface.
func (r ResourceFacingService) Use(ref Ref) bool {
	return r.AddRef(ref)
}

// voicePortKeys lists the voice port properties per device family.
var voicePortKeys = map[DeviceType][]string{
	DeviceONT: {PropPotsPort1Number, PropPotsPort2Number},
	DeviceCBM: {PropVoipPort1, PropVoipPort2},
}

// counterRecordsPreviousValue marks ports whose counter records the value read before
// the increment. Downstream consumers of port 2 depend on this.
var counterRecordsPreviousValue = map[int]bool{2: true}

// LogicalDevice is an inventory record for CPE or network equipment.
type LogicalDevice struct{ *Entity }

func AsLogicalDevice(e *Entity) (LogicalDevice, error) {
	return LogicalDevice{e}, viewOf(e, KindLogicalDevice)
}

// NewLogicalDevice creates an unsaved device with the type's default port state.
func NewLogicalDevice(t DeviceType, serial string) (LogicalDevice, error) {
	name, err := DeviceName(t, serial)
	if err != nil {
		return LogicalDevice{}, err
	}
	e, err := NewEntity(KindLogicalDevice, name)
	if err != nil {
		return LogicalDevice{}, err
	}
	d := LogicalDevice{e}
	d.InitDefaults(t, serial)
	return d, nil
}

// InitDefaults stamps type, serial and free voice ports on a freshly built device.
func (d LogicalDevice) InitDefaults(t DeviceType, serial string) {
	d.properties.SetString(PropType, string(t))
	if t != DeviceOLT {
		d.properties.SetString(PropSerialNo, serial)
	}
	for _, key := range voicePortKeys[t] {
		d.properties.SetString(key, StateAvailable)
	}
}

func (d LogicalDevice) DeviceType() DeviceType {
	if t := DeviceType(d.Property(PropType)); t.IsValid() {
		return t
	}
	t, _ := ParseDeviceName(d.Name())
	return t
}

func (d LogicalDevice) SerialNo() string            { return d.Property(PropSerialNo) }
func (d LogicalDevice) MACAddress() string          { return d.Property(PropMACAddress) }
func (d LogicalDevice) Model() string               { return d.Property(PropModel) }
func (d LogicalDevice) AdministrativeState() string { return d.Property(PropAdministrativeState) }
func (d LogicalDevice) OperationalState() string    { return d.Property(PropOperationalState) }

// Allocate marks the device as in use by a service.
func (d LogicalDevice) Allocate() {
	d.SetStringProperty(PropAdministrativeState, StateAllocated)
	d.SetStringProperty(PropOperationalState, StateActive)
}

// Reset returns the device and its ports to the free pool.
func (d LogicalDevice) Reset() {
	d.SetStringProperty(PropAdministrativeState, StateAvailable)
	d.SetStringProperty(PropOperationalState, StateAvailable)
	for _, key := range voicePortKeys[d.DeviceType()] {
		d.SetStringProperty(key, StateAvailable)
	}
	if _, ok := d.properties[PropPortState]; ok {
		d.SetStringProperty(PropPortState, StateAvailable)
	}
}

// VoicePorts returns the voice port values keyed by property name.
func (d LogicalDevice) VoicePorts() map[string]string {
	out := make(map[string]string)
	for _, key := range voicePortKeys[d.DeviceType()] {
		out[key] = d.Property(key)
	}
	return out
}

// AssignVoicePort puts number on the first Available voice port and returns the port
// key. Assigning a number already present returns its port unchanged.
func (d LogicalDevice) AssignVoicePort(number string) (string, error) {
	keys := voicePortKeys[d.DeviceType()]
	for _, key := range keys {
		if d.Property(key) == number {
			return key, nil
		}
	}
	for _, key := range keys {
		if v := d.Property(key); v == "" || v == StateAvailable {
			d.SetStringProperty(key, number)
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoFreeVoicePort, d.Name())
}

// ReleaseVoicePorts frees every voice port holding one of numbers and returns how many
// were released.
func (d LogicalDevice) ReleaseVoicePorts(numbers []string) int {
	released := 0
	for _, key := range voicePortKeys[d.DeviceType()] {
		v := d.Property(key)
		for _, n := range numbers {
			if n != "" && v == n {
				d.SetStringProperty(key, StateAvailable)
				released++
				break
			}
		}
	}
	return released
}

// ReplaceVoicePortValue rewrites ports holding old to hold updated.
func (d LogicalDevice) ReplaceVoicePortValue(old, updated string) bool {
	changed := false
	for _, key := range voicePortKeys[d.DeviceType()] {
		if old != "" && d.Property(key) == old {
			d.SetStringProperty(key, updated)
			changed = true
		}
	}
	return changed
}

// PortCounter reads the usage counter of a port; absent or unparsable values are 0.
func (d LogicalDevice) PortCounter(port int) int {
	return d.properties.GetInt(PortCounterKey(port))
}

// IncrementPortCounter bumps the counter of a port by one and returns the value that
// was recorded on the device. Port 2 records the pre-increment value.
func (d LogicalDevice) IncrementPortCounter(port int) int {
	current := d.PortCounter(port)
	recorded := current + 1
	if counterRecordsPreviousValue[port] {
		recorded = current
	}
	// counters are stored as strings for existing downstream readers
	d.SetStringProperty(PortCounterKey(port), strconv.Itoa(recorded))
	return recorded
}

// LogicalInterface is a VLAN or single-tagged port interface.
type LogicalInterface struct{ *Entity }

func AsLogicalInterface(e *Entity) (LogicalInterface, error) {
	return LogicalInterface{e}, viewOf(e, KindLogicalInterface)
}

func (i LogicalInterface) DeviceName() string       { return i.Parent() }
func (i LogicalInterface) VLANID() int              { return i.properties.GetInt(PropVLANID) }
func (i LogicalInterface) MENM() string             { return i.Property(PropMENM) }
func (i LogicalInterface) Port() int                { return i.properties.GetInt(PropPort) }
func (i LogicalInterface) Slot() int                { return i.properties.GetInt(PropSlot) }
func (i LogicalInterface) TemplateRef() string      { return i.Property(PropTemplateRef) }
func (i LogicalInterface) OperationalState() string { return i.Property(PropOperationalState) }

// LogicalComponent is a port of a device, the scope single-tagged VLANs are allocated in.
type LogicalComponent struct{ *Entity }

func AsLogicalComponent(e *Entity) (LogicalComponent, error) {
	return LogicalComponent{e}, viewOf(e, KindLogicalComponent)
}

func (c LogicalComponent) DeviceName() string { return c.Parent() }
func (c LogicalComponent) Port() int          { return c.properties.GetInt(PropPort) }
