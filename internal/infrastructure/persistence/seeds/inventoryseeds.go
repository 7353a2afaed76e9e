// Package seeds reads device inventory files used to preload the free pool.
package seeds

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"invprov/internal/application/provisioning/usecases"
)

// InventoryFile is the on-disk layout of a seed file.
type InventoryFile struct {
	Devices []DeviceEntry `yaml:"devices"`
}

type DeviceEntry struct {
	Type       string         `yaml:"type"`
	Serial     string         `yaml:"serial"`
	Parent     string         `yaml:"parent,omitempty"`
	MACAddress string         `yaml:"mac_address,omitempty"`
	Model      string         `yaml:"model,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// LoadFile parses a seed file from disk.
func LoadFile(path string) (*usecases.SeedInventoryCommand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Load parses a seed document. Unknown keys are rejected so typos do not silently
// drop devices.
func Load(r io.Reader) (*usecases.SeedInventoryCommand, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file InventoryFile
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	cmd := &usecases.SeedInventoryCommand{
		Devices: make([]usecases.DeviceSeed, 0, len(file.Devices)),
	}
	for _, d := range file.Devices {
		cmd.Devices = append(cmd.Devices, usecases.DeviceSeed{
			Type:       d.Type,
			Serial:     d.Serial,
			Parent:     d.Parent,
			MACAddress: d.MACAddress,
			Model:      d.Model,
			Properties: d.Properties,
		})
	}
	return cmd, nil
}
