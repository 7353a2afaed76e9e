package usecases

import (
	"context"

	"github.com/google/uuid"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

const (
	transactionTypeCreate = "CREATE"
	maxVoiceNumbers       = 2
)

type CreateServiceCommand struct {
	AccountNumber string
	// Qualifier is appended to the subscriber name when one account holds several
	// premises (MAC or ONT serial).
	Qualifier      string
	SubscriberType string
	HouseholdID    string
	ContactName    string
	ContactPhone   string

	ServiceID      string
	ServiceLink    string
	ServiceSubType string
	ServiceType    string
	QoSProfile     string

	SerialNo   string
	MACAddress string
	Model      string
	OLTName    string
	STBSerials []string
	APSerial   string

	// MENM requests a VLAN from that scope.
	MENM        string
	TemplateRef string
	// Port requests a single-tagged slot on that ONT port.
	Port         int
	VoiceNumbers []string
	Properties   map[string]any
}

type CreateServiceResult struct {
	Subscriber    string
	Subscription  string
	Product       string
	CFS           string
	RFS           string
	Devices       []string
	Interfaces    []string
	VLANID        int
	Slot          int
	PortCounter   int
	TransactionID string
	Created       []string
}

type CreateServiceUseCase struct {
	resolver  *services.Resolver
	allocator *services.Allocator
	store     inventory.GraphStore
	tx        TxRunner
	logger    logger.Interface
}

func NewCreateServiceUseCase(
	store inventory.GraphStore,
	resolver *services.Resolver,
	allocator *services.Allocator,
	tx TxRunner,
	logger logger.Interface,
) *CreateServiceUseCase {
	return &CreateServiceUseCase{
		resolver:  resolver,
		allocator: allocator,
		store:     store,
		tx:        tx,
		logger:    logger,
	}
}

// createNames holds every canonical name the command derives, computed before any write.
type createNames struct {
	subscriber   string
	subscription string
	product      string
	cfs          string
	rfs          string
	device       string
}

func (uc *CreateServiceUseCase) Execute(ctx context.Context, cmd CreateServiceCommand) (*CreateServiceResult, error) {
	uc.logger.Infow("executing create service use case",
		"account", cmd.AccountNumber,
		"service_id", cmd.ServiceID,
		"service_link", cmd.ServiceLink,
	)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Errorw("invalid create service command", "error", err)
		return nil, err
	}

	names, err := uc.buildNames(cmd)
	if err != nil {
		uc.logger.Errorw("failed to build canonical names", "error", err)
		return nil, services.MapError(err)
	}

	result := &CreateServiceResult{
		Subscriber:    names.subscriber,
		Subscription:  names.subscription,
		Product:       names.product,
		CFS:           names.cfs,
		RFS:           names.rfs,
		TransactionID: uuid.NewString(),
	}

	duplicate := false
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var resolution services.Resolution

		subscription, err := uc.resolveCore(ctx, cmd, names, &resolution)
		if err != nil {
			return err
		}
		if resolution.AllExisted() {
			duplicate = true
			return nil
		}

		if err := uc.provisionServiceLayer(ctx, cmd, names, subscription, result, &resolution); err != nil {
			return err
		}

		for _, ref := range resolution.Created() {
			result.Created = append(result.Created, ref.String())
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to create service", "subscription", names.subscription, "error", err)
		return nil, services.MapError(err)
	}

	if duplicate {
		uc.logger.Warnw("service already exists", "subscription", names.subscription)
		return nil, errors.NewDuplicateEntryError("service already exists", names.subscription)
	}

	uc.logger.Infow("service created successfully",
		"subscription", names.subscription,
		"transaction_id", result.TransactionID,
		"created", len(result.Created),
	)
	return result, nil
}

// resolveCore resolves Subscriber, Subscription and Product and links the product
// into the subscription's service set.
func (uc *CreateServiceUseCase) resolveCore(ctx context.Context, cmd CreateServiceCommand, names createNames, resolution *services.Resolution) (inventory.Subscription, error) {
	subscriber, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindSubscriber, names.subscriber, func(e *inventory.Entity) {
		p := e.Properties()
		p.SetString(inventory.PropAccountNumber, cmd.AccountNumber)
		setIfPresent(p, inventory.PropType, cmd.SubscriberType)
		setIfPresent(p, inventory.PropHouseholdID, cmd.HouseholdID)
		setIfPresent(p, inventory.PropContactName, cmd.ContactName)
		setIfPresent(p, inventory.PropContactPhone, cmd.ContactPhone)
	})
	if err != nil {
		return inventory.Subscription{}, err
	}
	resolution.Track(subscriber, existed)

	extra, err := toProperties(cmd.Properties)
	if err != nil {
		return inventory.Subscription{}, err
	}
	subEntity, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindSubscription, names.subscription, func(e *inventory.Entity) {
		e.SetParent(subscriber.Name())
		e.MergeProperties(extra)
		p := e.Properties()
		p.SetString(inventory.PropServiceID, cmd.ServiceID)
		p.SetString(inventory.PropServiceLink, cmd.ServiceLink)
		setIfPresent(p, inventory.PropServiceSubType, cmd.ServiceSubType)
		setIfPresent(p, inventory.PropSerialNo, cmd.SerialNo)
		setIfPresent(p, inventory.PropMACAddress, cmd.MACAddress)
		setIfPresent(p, inventory.PropQoSProfile, cmd.QoSProfile)
		for i, number := range cmd.VoiceNumbers {
			p.SetString([]string{inventory.PropVoipNumber1, inventory.PropVoipNumber2}[i], number)
		}
	})
	if err != nil {
		return inventory.Subscription{}, err
	}
	resolution.Track(subEntity, existed)

	product, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindProduct, names.product, func(e *inventory.Entity) {
		e.SetParent(subscriber.Name())
		e.Properties().SetString(inventory.PropProductType, cmd.ServiceSubType)
	})
	if err != nil {
		return inventory.Subscription{}, err
	}
	resolution.Track(product, existed)

	subscription, err := inventory.AsSubscription(subEntity)
	if err != nil {
		return inventory.Subscription{}, err
	}
	if subscription.LinkProduct(product.Name()) {
		if err := uc.store.Save(ctx, subEntity); err != nil {
			return inventory.Subscription{}, err
		}
	}
	return subscription, nil
}

func (uc *CreateServiceUseCase) provisionServiceLayer(
	ctx context.Context,
	cmd CreateServiceCommand,
	names createNames,
	subscription inventory.Subscription,
	result *CreateServiceResult,
	resolution *services.Resolution,
) error {
	serviceDefaults := func(parent string) services.Defaults {
		return func(e *inventory.Entity) {
			e.SetParent(parent)
			p := e.Properties()
			setIfPresent(p, inventory.PropServiceType, cmd.ServiceType)
			p.SetString(inventory.PropTransactionID, result.TransactionID)
			p.SetString(inventory.PropTransactionType, transactionTypeCreate)
		}
	}

	cfs, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindCFS, names.cfs, serviceDefaults(names.product))
	if err != nil {
		return err
	}
	resolution.Track(cfs, existed)

	rfsEntity, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindRFS, names.rfs, serviceDefaults(cfs.Name()))
	if err != nil {
		return err
	}
	resolution.Track(rfsEntity, existed)
	rfs, err := inventory.AsRFS(rfsEntity)
	if err != nil {
		return err
	}

	if names.device != "" {
		device, err := uc.provisionDevice(ctx, ServiceLinkDevice(cmd.ServiceLink), cmd.SerialNo, cmd, subscription.VoiceNumbers(), resolution)
		if err != nil {
			return err
		}
		rfs.Use(device.Ref())
		result.Devices = append(result.Devices, device.Name())
	}

	for _, serial := range cmd.STBSerials {
		device, err := uc.provisionDevice(ctx, inventory.DeviceSTB, serial, cmd, nil, resolution)
		if err != nil {
			return err
		}
		rfs.Use(device.Ref())
		result.Devices = append(result.Devices, device.Name())
	}
	if cmd.APSerial != "" {
		device, err := uc.provisionDevice(ctx, inventory.DeviceAP, cmd.APSerial, cmd, nil, resolution)
		if err != nil {
			return err
		}
		rfs.Use(device.Ref())
		result.Devices = append(result.Devices, device.Name())
	}

	if cmd.MENM != "" {
		iface, err := uc.allocator.AllocateVLAN(ctx, services.VLANRequest{
			MENM:        cmd.MENM,
			Device:      names.device,
			TemplateRef: cmd.TemplateRef,
		})
		if err != nil {
			return err
		}
		rfs.Use(iface.Ref())
		result.VLANID = iface.VLANID()
		result.Interfaces = append(result.Interfaces, iface.Name())
	}

	if cmd.Port > 0 {
		if err := uc.provisionPort(ctx, cmd, names, rfs, result, resolution); err != nil {
			return err
		}
	}

	return uc.store.Save(ctx, rfsEntity)
}

// provisionDevice resolves a device, marks it allocated and places the service's voice
// numbers on free voice ports.
func (uc *CreateServiceUseCase) provisionDevice(
	ctx context.Context,
	deviceType inventory.DeviceType,
	serial string,
	cmd CreateServiceCommand,
	voiceNumbers []string,
	resolution *services.Resolution,
) (*inventory.Entity, error) {
	name, err := inventory.DeviceName(deviceType, serial)
	if err != nil {
		return nil, err
	}

	if deviceType == inventory.DeviceONT && cmd.OLTName != "" {
		olt, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindLogicalDevice, cmd.OLTName, func(e *inventory.Entity) {
			inventory.LogicalDevice{Entity: e}.InitDefaults(inventory.DeviceOLT, cmd.OLTName)
		})
		if err != nil {
			return nil, err
		}
		resolution.Track(olt, existed)
	}

	entity, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindLogicalDevice, name, func(e *inventory.Entity) {
		inventory.LogicalDevice{Entity: e}.InitDefaults(deviceType, serial)
		if deviceType == inventory.DeviceONT {
			e.SetParent(cmd.OLTName)
		}
		if deviceType == ServiceLinkDevice(cmd.ServiceLink) {
			setIfPresent(e.Properties(), inventory.PropMACAddress, cmd.MACAddress)
			setIfPresent(e.Properties(), inventory.PropModel, cmd.Model)
		}
	})
	if err != nil {
		return nil, err
	}
	resolution.Track(entity, existed)

	device, err := inventory.AsLogicalDevice(entity)
	if err != nil {
		return nil, err
	}
	device.Allocate()
	if len(device.VoicePorts()) == 0 {
		voiceNumbers = nil
	}
	for _, number := range voiceNumbers {
		if _, err := device.AssignVoicePort(number); err != nil {
			return nil, err
		}
	}
	if err := uc.store.Save(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// provisionPort reserves a single-tagged slot on the ONT port and bumps its counter.
func (uc *CreateServiceUseCase) provisionPort(
	ctx context.Context,
	cmd CreateServiceCommand,
	names createNames,
	rfs inventory.ResourceFacingService,
	result *CreateServiceResult,
	resolution *services.Resolution,
) error {
	componentName, err := inventory.ComponentName(names.device, cmd.Port)
	if err != nil {
		return err
	}
	component, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindLogicalComponent, componentName, func(e *inventory.Entity) {
		e.SetParent(names.device)
		e.Properties().SetInt(inventory.PropPort, cmd.Port)
	})
	if err != nil {
		return err
	}
	resolution.Track(component, existed)

	iface, err := uc.allocator.AllocateSingleTaggedSlot(ctx, services.SlotRequest{
		Serial:      cmd.SerialNo,
		Port:        cmd.Port,
		Device:      names.device,
		TemplateRef: cmd.TemplateRef,
	})
	if err != nil {
		return err
	}
	rfs.Use(iface.Ref())
	result.Slot = iface.Slot()
	result.Interfaces = append(result.Interfaces, iface.Name())

	counter, err := uc.allocator.IncrementPortCounter(ctx, names.device, cmd.Port)
	if err != nil {
		return err
	}
	result.PortCounter = counter
	return nil
}

func (uc *CreateServiceUseCase) buildNames(cmd CreateServiceCommand) (createNames, error) {
	var names createNames
	var err error

	if names.subscriber, err = inventory.SubscriberName(cmd.AccountNumber, cmd.Qualifier); err != nil {
		return names, err
	}

	// cable modem subscriptions are keyed by modem serial as well
	serialSuffix := ""
	if inventory.ServiceLink(cmd.ServiceLink) == inventory.LinkCableModem {
		serialSuffix = cmd.SerialNo
	}
	if names.subscription, err = inventory.SubscriptionName(names.subscriber, cmd.ServiceID, serialSuffix); err != nil {
		return names, err
	}
	if names.product, err = inventory.ProductName(names.subscriber, cmd.ServiceSubType, cmd.ServiceID); err != nil {
		return names, err
	}
	if names.cfs, err = inventory.CFSName(names.subscription); err != nil {
		return names, err
	}
	if names.rfs, err = inventory.RFSName(names.subscription); err != nil {
		return names, err
	}
	if cmd.SerialNo != "" {
		if names.device, err = inventory.DeviceName(ServiceLinkDevice(cmd.ServiceLink), cmd.SerialNo); err != nil {
			return names, err
		}
	}
	return names, nil
}

func (uc *CreateServiceUseCase) validateCommand(cmd CreateServiceCommand) error {
	if cmd.AccountNumber == "" {
		return errors.NewValidationError("account number is required")
	}
	if cmd.ServiceID == "" {
		return errors.NewValidationError("service ID is required")
	}
	if cmd.ServiceSubType == "" {
		return errors.NewValidationError("service subtype is required")
	}
	if !inventory.ServiceLink(cmd.ServiceLink).IsValid() {
		return errors.NewValidationError("invalid service link", cmd.ServiceLink)
	}
	if inventory.ServiceLink(cmd.ServiceLink) == inventory.LinkCableModem && cmd.SerialNo == "" {
		return errors.NewValidationError("cable modem services require the modem serial number")
	}
	if len(cmd.VoiceNumbers) > maxVoiceNumbers {
		return errors.NewValidationError("at most two voice numbers are supported")
	}
	if cmd.Port > 0 {
		if cmd.SerialNo == "" {
			return errors.NewValidationError("a port requires the ONT serial number")
		}
		if inventory.ServiceLink(cmd.ServiceLink) != inventory.LinkONT {
			return errors.NewValidationError("single-tagged ports are only available on ONT services")
		}
	}
	if cmd.Port < 0 {
		return errors.NewValidationError("port must be positive")
	}
	return nil
}

// ServiceLinkDevice returns the CPE type a service link terminates on.
func ServiceLinkDevice(link string) inventory.DeviceType {
	return inventory.ServiceLink(link).DeviceType()
}

func setIfPresent(p inventory.Properties, key, value string) {
	if value != "" {
		p.SetString(key, value)
	}
}
