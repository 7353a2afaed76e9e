package provisioning

import (
	"invprov/internal/application/provisioning/usecases"
)

type CreateServiceRequest struct {
	AccountNumber  string         `json:"account_number" validate:"required,identifier,max=100"`
	Qualifier      string         `json:"qualifier" validate:"identifier"`
	SubscriberType string         `json:"subscriber_type"`
	HouseholdID    string         `json:"household_id"`
	ContactName    string         `json:"contact_name"`
	ContactPhone   string         `json:"contact_phone"`
	ServiceID      string         `json:"service_id" validate:"required,identifier"`
	ServiceLink    string         `json:"service_link" validate:"required,oneof=ONT SRX Cable_Modem"`
	ServiceSubType string         `json:"service_sub_type" validate:"required,identifier"`
	ServiceType    string         `json:"service_type"`
	QoSProfile     string         `json:"qos_profile"`
	SerialNo       string         `json:"serial_no" validate:"identifier"`
	MACAddress     string         `json:"mac_address" validate:"omitempty,mac"`
	Model          string         `json:"model"`
	OLTName        string         `json:"olt_name" validate:"identifier"`
	STBSerials     []string       `json:"stb_serials" validate:"dive,required,identifier"`
	APSerial       string         `json:"ap_serial" validate:"identifier"`
	MENM           string         `json:"menm" validate:"identifier"`
	TemplateRef    string         `json:"template_ref"`
	Port           int            `json:"port" validate:"gte=0"`
	VoiceNumbers   []string       `json:"voice_numbers" validate:"max=2,dive,required,identifier"`
	Properties     map[string]any `json:"properties"`
}

func (r *CreateServiceRequest) ToCommand() usecases.CreateServiceCommand {
	return usecases.CreateServiceCommand{
		AccountNumber:  r.AccountNumber,
		Qualifier:      r.Qualifier,
		SubscriberType: r.SubscriberType,
		HouseholdID:    r.HouseholdID,
		ContactName:    r.ContactName,
		ContactPhone:   r.ContactPhone,
		ServiceID:      r.ServiceID,
		ServiceLink:    r.ServiceLink,
		ServiceSubType: r.ServiceSubType,
		ServiceType:    r.ServiceType,
		QoSProfile:     r.QoSProfile,
		SerialNo:       r.SerialNo,
		MACAddress:     r.MACAddress,
		Model:          r.Model,
		OLTName:        r.OLTName,
		STBSerials:     r.STBSerials,
		APSerial:       r.APSerial,
		MENM:           r.MENM,
		TemplateRef:    r.TemplateRef,
		Port:           r.Port,
		VoiceNumbers:   r.VoiceNumbers,
		Properties:     r.Properties,
	}
}

type ModifyServiceRequest struct {
	ServiceID         string         `json:"service_id" validate:"identifier"`
	QoSProfile        *string        `json:"qos_profile"`
	Status            *string        `json:"status" validate:"omitempty,oneof=Active Suspended Inactive"`
	Properties        map[string]any `json:"properties"`
	ProductProperties map[string]any `json:"product_properties"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Suspended Inactive"`
}

type TransferAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,identifier"`
	Qualifier     string `json:"qualifier" validate:"identifier"`
}

type RenameSubscriberRequest struct {
	AccountNumber string `json:"account_number" validate:"required,identifier"`
}

type AllocateVLANRequest struct {
	MENM        string `json:"menm" validate:"required,identifier"`
	Device      string `json:"device"`
	TemplateRef string `json:"template_ref"`
	RangeStart  int    `json:"range_start" validate:"gte=0"`
	RangeEnd    int    `json:"range_end" validate:"omitempty,gtfield=RangeStart"`
}

type SeedDeviceRequest struct {
	Type       string         `json:"type" validate:"required,oneof=OLT ONT STB AP SRX CBM"`
	Serial     string         `json:"serial" validate:"required,identifier"`
	Parent     string         `json:"parent"`
	MACAddress string         `json:"mac_address" validate:"omitempty,mac"`
	Model      string         `json:"model"`
	Properties map[string]any `json:"properties"`
}

type SeedInventoryRequest struct {
	Devices []SeedDeviceRequest `json:"devices" validate:"required,min=1,dive"`
}

func (r *SeedInventoryRequest) ToCommand() usecases.SeedInventoryCommand {
	cmd := usecases.SeedInventoryCommand{Devices: make([]usecases.DeviceSeed, 0, len(r.Devices))}
	for _, d := range r.Devices {
		cmd.Devices = append(cmd.Devices, usecases.DeviceSeed{
			Type:       d.Type,
			Serial:     d.Serial,
			Parent:     d.Parent,
			MACAddress: d.MACAddress,
			Model:      d.Model,
			Properties: d.Properties,
		})
	}
	return cmd
}
