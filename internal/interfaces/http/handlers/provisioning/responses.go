package provisioning

import (
	"invprov/internal/application/provisioning/usecases"
)

type CreateServiceResponse struct {
	Subscriber    string   `json:"subscriber"`
	Subscription  string   `json:"subscription"`
	Product       string   `json:"product"`
	CFS           string   `json:"cfs"`
	RFS           string   `json:"rfs"`
	Devices       []string `json:"devices"`
	Interfaces    []string `json:"interfaces,omitempty"`
	VLANID        int      `json:"vlan_id,omitempty"`
	Slot          int      `json:"slot,omitempty"`
	PortCounter   int      `json:"port_counter,omitempty"`
	TransactionID string   `json:"transaction_id"`
	Created       []string `json:"created"`
}

func toCreateServiceResponse(r *usecases.CreateServiceResult) *CreateServiceResponse {
	return &CreateServiceResponse{
		Subscriber:    r.Subscriber,
		Subscription:  r.Subscription,
		Product:       r.Product,
		CFS:           r.CFS,
		RFS:           r.RFS,
		Devices:       r.Devices,
		Interfaces:    r.Interfaces,
		VLANID:        r.VLANID,
		Slot:          r.Slot,
		PortCounter:   r.PortCounter,
		TransactionID: r.TransactionID,
		Created:       r.Created,
	}
}

type RenameResponse struct {
	Subscription string      `json:"subscription"`
	Renamed      bool        `json:"renamed"`
	Renames      [][2]string `json:"renames,omitempty"`
}

type StatusResponse struct {
	Subscription string   `json:"subscription"`
	Status       string   `json:"status"`
	Updated      []string `json:"updated"`
}

type DeleteServiceResponse struct {
	Subscription       string   `json:"subscription"`
	Deleted            []string `json:"deleted"`
	ResetDevices       []string `json:"reset_devices,omitempty"`
	ReleasedVoicePorts int      `json:"released_voice_ports"`
	FreedInterfaces    []string `json:"freed_interfaces,omitempty"`
	SubscriberDeleted  bool     `json:"subscriber_deleted"`
}

func toDeleteServiceResponse(r *usecases.DeleteServiceResult) *DeleteServiceResponse {
	return &DeleteServiceResponse{
		Subscription:       r.Subscription,
		Deleted:            r.Deleted,
		ResetDevices:       r.ResetDevices,
		ReleasedVoicePorts: r.ReleasedVoicePorts,
		FreedInterfaces:    r.FreedInterfaces,
		SubscriberDeleted:  r.SubscriberDeleted,
	}
}

type TransferAccountResponse struct {
	Subscription       string      `json:"subscription"`
	Subscriber         string      `json:"subscriber"`
	SubscriberCreated  bool        `json:"subscriber_created"`
	PreviousSubscriber string      `json:"previous_subscriber"`
	PreviousDeleted    bool        `json:"previous_deleted"`
	Renames            [][2]string `json:"renames,omitempty"`
}

func toTransferAccountResponse(r *usecases.TransferAccountResult) *TransferAccountResponse {
	return &TransferAccountResponse{
		Subscription:       r.Subscription,
		Subscriber:         r.Subscriber,
		SubscriberCreated:  r.SubscriberCreated,
		PreviousSubscriber: r.PreviousSubscriber,
		PreviousDeleted:    r.PreviousDeleted,
		Renames:            r.Renames,
	}
}
