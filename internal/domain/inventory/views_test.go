package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, typ DeviceType, serial string) LogicalDevice {
	d, err := NewLogicalDevice(typ, serial)
	require.NoError(t, err)
	return d
}

func TestLogicalDevice_IncrementPortCounter(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		current  string
		expected int
	}{
		{name: "port 2 records the pre-increment value", port: 2, current: "5", expected: 5},
		{name: "port 3 records the incremented value", port: 3, current: "5", expected: 6},
		{name: "absent counter starts at zero", port: 4, current: "", expected: 1},
		{name: "unparsable counter starts at zero", port: 5, current: "n/a", expected: 1},
		{name: "absent port 2 counter stays zero", port: 2, current: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDevice(t, DeviceONT, "ALCL0001")
			if tt.current != "" {
				d.Properties().SetString(PortCounterKey(tt.port), tt.current)
			}

			recorded := d.IncrementPortCounter(tt.port)

			assert.Equal(t, tt.expected, recorded)
			assert.Equal(t, tt.expected, d.PortCounter(tt.port))
			v, ok := d.Properties().Get(PortCounterKey(tt.port))
			require.True(t, ok)
			assert.Equal(t, ValueString, v.Kind())
		})
	}
}

func TestLogicalDevice_VoicePorts(t *testing.T) {
	d := newTestDevice(t, DeviceONT, "ALCL0001")
	assert.Equal(t, StateAvailable, d.Property(PropPotsPort1Number))
	assert.Equal(t, StateAvailable, d.Property(PropPotsPort2Number))

	key, err := d.AssignVoicePort("5551000")
	require.NoError(t, err)
	assert.Equal(t, PropPotsPort1Number, key)

	again, err := d.AssignVoicePort("5551000")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	key, err = d.AssignVoicePort("5552000")
	require.NoError(t, err)
	assert.Equal(t, PropPotsPort2Number, key)

	_, err = d.AssignVoicePort("5553000")
	assert.True(t, errors.Is(err, ErrNoFreeVoicePort))

	assert.Equal(t, 1, d.ReleaseVoicePorts([]string{"5551000", "9999"}))
	assert.Equal(t, StateAvailable, d.Property(PropPotsPort1Number))
	assert.Equal(t, "5552000", d.Property(PropPotsPort2Number))
}

func TestLogicalDevice_Reset(t *testing.T) {
	d := newTestDevice(t, DeviceCBM, "AABBCC")
	d.Allocate()
	_, err := d.AssignVoicePort("5551000")
	require.NoError(t, err)

	d.Reset()

	assert.Equal(t, StateAvailable, d.AdministrativeState())
	assert.Equal(t, StateAvailable, d.OperationalState())
	assert.Equal(t, StateAvailable, d.Property(PropVoipPort1))
	assert.Equal(t, StateAvailable, d.Property(PropVoipPort2))
}

func TestViews_KindMismatch(t *testing.T) {
	e, err := NewEntity(KindProduct, "SUB1_HSI_100")
	require.NoError(t, err)

	_, err = AsSubscription(e)
	assert.True(t, errors.Is(err, ErrKindMismatch))

	p, err := AsProduct(e)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status())
}

func TestSubscription_LinkProductIsAUnion(t *testing.T) {
	e, err := NewEntity(KindSubscription, "SUB1_100")
	require.NoError(t, err)
	s, err := AsSubscription(e)
	require.NoError(t, err)

	assert.True(t, s.LinkProduct("SUB1_HSI_100"))
	assert.True(t, s.LinkProduct("SUB1_VOIP_100"))
	assert.False(t, s.LinkProduct("SUB1_HSI_100"))
	assert.Equal(t, []string{"SUB1_HSI_100", "SUB1_VOIP_100"}, s.Services())
}

func TestValue_JSONRoundTripKeepsKinds(t *testing.T) {
	props := Properties{}
	props.SetString(PropSerialNo, "ALCL0001")
	props.SetInt(PropVLANID, 1002)
	props.SetBool("managed", true)

	m := props.ToMap()
	back, err := PropertiesFromMap(m)
	require.NoError(t, err)

	assert.Equal(t, props, back)

	var v Value
	require.NoError(t, v.UnmarshalJSON([]byte("4001")))
	n, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, int64(4001), n)
}
