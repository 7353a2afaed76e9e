package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxNameLength bounds every canonical name.
	MaxNameLength = 100
	// Separator joins the fields of a composite name.
	Separator = "_"

	cfsPrefix          = "CFS_"
	rfsPrefix          = "RFS_"
	singleTaggedMarker = "SINGLETAGGED"
)

// NameParts carries the business identifiers a canonical name may be built from.
// Each kind reads only the fields its rule names.
type NameParts struct {
	Account      string
	Qualifier    string
	Subscriber   string
	ServiceID    string
	SubType      string
	Serial       string
	Subscription string
	DeviceType   DeviceType
	Device       string
	MENM         string
	VLANID       int
	Port         int
	Slot         int
}

type nameRule func(p NameParts) (string, error)

var nameRules = map[Kind]nameRule{
	KindSubscriber: func(p NameParts) (string, error) {
		if err := required("account number", p.Account); err != nil {
			return "", err
		}
		if err := optionalErr("qualifier", p.Qualifier); err != nil {
			return "", err
		}
		return join(p.Account, optional(p.Qualifier)...), nil
	},
	KindSubscription: func(p NameParts) (string, error) {
		if err := required("subscriber", p.Subscriber, "service ID", p.ServiceID); err != nil {
			return "", err
		}
		if err := optionalErr("serial", p.Serial); err != nil {
			return "", err
		}
		return join(p.Subscriber, append([]string{p.ServiceID}, optional(p.Serial)...)...), nil
	},
	KindProduct: func(p NameParts) (string, error) {
		if err := required("subscriber", p.Subscriber, "product subtype", p.SubType, "service ID", p.ServiceID); err != nil {
			return "", err
		}
		return join(p.Subscriber, p.SubType, p.ServiceID), nil
	},
	KindCFS: func(p NameParts) (string, error) {
		if err := required("subscription", p.Subscription); err != nil {
			return "", err
		}
		return cfsPrefix + p.Subscription, nil
	},
	KindRFS: func(p NameParts) (string, error) {
		if err := required("subscription", p.Subscription); err != nil {
			return "", err
		}
		return rfsPrefix + p.Subscription, nil
	},
	KindLogicalDevice: func(p NameParts) (string, error) {
		if !p.DeviceType.IsValid() {
			return "", fmt.Errorf("%w: device type %q", ErrInvalidIdentifier, p.DeviceType)
		}
		if err := required("serial number", p.Serial); err != nil {
			return "", err
		}
		return p.DeviceType.Prefix() + p.Serial, nil
	},
	KindLogicalInterface: func(p NameParts) (string, error) {
		if p.MENM != "" {
			if err := required("MENM", p.MENM); err != nil {
				return "", err
			}
			if p.VLANID <= 0 {
				return "", fmt.Errorf("%w: VLAN ID must be positive", ErrInvalidIdentifier)
			}
			return join(p.MENM, strconv.Itoa(p.VLANID)), nil
		}
		if err := required("ONT serial", p.Serial); err != nil {
			return "", err
		}
		if p.Port <= 0 || p.Slot <= 0 {
			return "", fmt.Errorf("%w: port and slot must be positive", ErrInvalidIdentifier)
		}
		return join(p.Serial, "P"+strconv.Itoa(p.Port), singleTaggedMarker, strconv.Itoa(p.Slot)), nil
	},
	KindLogicalComponent: func(p NameParts) (string, error) {
		if err := required("device", p.Device); err != nil {
			return "", err
		}
		if p.Port <= 0 {
			return "", fmt.Errorf("%w: port must be positive", ErrInvalidIdentifier)
		}
		return join(p.Device, "P"+strconv.Itoa(p.Port)), nil
	},
}

// BuildName derives the canonical name of an entity of the given kind.
// Names longer than MaxNameLength yield a *NameTooLongError, never a truncated name.
func BuildName(kind Kind, parts NameParts) (string, error) {
	rule, ok := nameRules[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	name, err := rule(parts)
	if err != nil {
		return "", err
	}
	if err := checkName(kind, name); err != nil {
		return "", err
	}
	return name, nil
}

func SubscriberName(account, qualifier string) (string, error) {
	return BuildName(KindSubscriber, NameParts{Account: account, Qualifier: qualifier})
}

// SubscriptionName builds subscriber_serviceId, with _serial appended when serial is set.
func SubscriptionName(subscriber, serviceID, serial string) (string, error) {
	return BuildName(KindSubscription, NameParts{Subscriber: subscriber, ServiceID: serviceID, Serial: serial})
}

func ProductName(subscriber, subType, serviceID string) (string, error) {
	return BuildName(KindProduct, NameParts{Subscriber: subscriber, SubType: subType, ServiceID: serviceID})
}

func CFSName(subscription string) (string, error) {
	return BuildName(KindCFS, NameParts{Subscription: subscription})
}

func RFSName(subscription string) (string, error) {
	return BuildName(KindRFS, NameParts{Subscription: subscription})
}

func DeviceName(t DeviceType, serial string) (string, error) {
	return BuildName(KindLogicalDevice, NameParts{DeviceType: t, Serial: serial})
}

func VLANInterfaceName(menm string, vlanID int) (string, error) {
	return BuildName(KindLogicalInterface, NameParts{MENM: menm, VLANID: vlanID})
}

func SingleTaggedInterfaceName(serial string, port, slot int) (string, error) {
	return BuildName(KindLogicalInterface, NameParts{Serial: serial, Port: port, Slot: slot})
}

func ComponentName(device string, port int) (string, error) {
	return BuildName(KindLogicalComponent, NameParts{Device: device, Port: port})
}

// ParseDeviceName recovers the device type and serial from a prefixed device name.
// Names without a known prefix are treated as OLT names.
func ParseDeviceName(name string) (DeviceType, string) {
	for _, t := range []DeviceType{DeviceSTB, DeviceAP, DeviceSRX, DeviceONT, DeviceCBM} {
		if prefix := t.Prefix(); strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return t, strings.TrimPrefix(name, prefix)
		}
	}
	return DeviceOLT, name
}

// ReplaceToken replaces the first occurrence of fragment in name that sits on token
// boundaries: the match must start at the beginning of name or right after a
// separator, and end at the end of name or right before one. It reports whether a
// replacement happened.
func ReplaceToken(name, fragment, replacement string) (string, bool) {
	start, ok := tokenIndex(name, fragment)
	if !ok {
		return name, false
	}
	return name[:start] + replacement + name[start+len(fragment):], true
}

// ReplaceTokenAfter is ReplaceToken restricted to the part of name that follows the
// first bounded occurrence of anchor. Names without the anchor are left unchanged.
func ReplaceTokenAfter(name, anchor, fragment, replacement string) (string, bool) {
	start, ok := tokenIndex(name, anchor)
	if !ok {
		return name, false
	}
	cut := start + len(anchor)
	tail, replaced := ReplaceToken(name[cut:], fragment, replacement)
	if !replaced {
		return name, false
	}
	return name[:cut] + tail, true
}

func tokenIndex(name, fragment string) (int, bool) {
	if fragment == "" {
		return 0, false
	}
	from := 0
	for from <= len(name)-len(fragment) {
		idx := strings.Index(name[from:], fragment)
		if idx < 0 {
			return 0, false
		}
		start := from + idx
		end := start + len(fragment)
		leftOK := start == 0 || strings.HasPrefix(name[start-1:], Separator)
		rightOK := end == len(name) || strings.HasPrefix(name[end:], Separator)
		if leftOK && rightOK {
			return start, true
		}
		from = start + 1
	}
	return 0, false
}

// ValidateIdentifier checks a single business identifier.
func ValidateIdentifier(field, value string) error {
	return required(field, value)
}

func checkName(kind Kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidIdentifier, kind)
	}
	if len(name) > MaxNameLength {
		return &NameTooLongError{Kind: kind, Name: name}
	}
	return nil
}

// required takes (field, value) pairs.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		field, value := pairs[i], pairs[i+1]
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidIdentifier, field)
		}
		if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: %s must not contain whitespace", ErrInvalidIdentifier, field)
		}
	}
	return nil
}

func optional(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}

func optionalErr(field, value string) error {
	if value == "" {
		return nil
	}
	return required(field, value)
}

func join(first string, rest ...string) string {
	return strings.Join(append([]string{first}, rest...), Separator)
}
