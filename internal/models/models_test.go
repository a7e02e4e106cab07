package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRouteStatus(t *testing.T) {
	for _, status := range RouteStatuses {
		got, ok := ParseRouteStatus(string(status))
		assert.True(t, ok)
		assert.Equal(t, status, got)
	}

	for _, bad := range []string{"", "planned", "BOGUS", " PLANNED"} {
		_, ok := ParseRouteStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestStopTypeValid(t *testing.T) {
	assert.True(t, StopTypePickup.Valid())
	assert.True(t, StopTypeDelivery.Valid())
	assert.True(t, StopTypePickupAndDelivery.Valid())
	assert.False(t, StopType("DROP_OFF").Valid())
	assert.False(t, StopType("").Valid())
}

func TestVehicleCanCarry(t *testing.T) {
	v := &Vehicle{MaxWeight: 1200, MaxVolume: 10}

	assert.True(t, v.CanCarry(1200, 10), "equal capacity passes")
	assert.True(t, v.CanCarry(0, 0))
	assert.False(t, v.CanCarry(1200.5, 10))
	assert.False(t, v.CanCarry(100, 10.1))
}

func TestDriverFullName(t *testing.T) {
	d := &DriverDetail{FirstName: "John", LastName: "Driver"}
	assert.Equal(t, "John Driver", d.FullName())
}

func TestRouteDetailJSONFlattensRoute(t *testing.T) {
	detail := RouteDetail{
		Route: Route{ID: "route-1", RouteNumber: "RTE-20241201-0001", Status: RouteStatusPlanned},
		Stops: []StopWithLoad{{RouteStop: RouteStop{ID: "stop-1", SequenceNumber: 1}, Shipments: []ShipmentSummary{}}},
	}

	data, err := json.Marshal(detail)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "RTE-20241201-0001", got["routeNumber"])
	assert.Nil(t, got["vehicle"])
	stops := got["stops"].([]interface{})
	require.Len(t, stops, 1)
	assert.Equal(t, "stop-1", stops[0].(map[string]interface{})["id"])
	assert.Equal(t, []interface{}{}, stops[0].(map[string]interface{})["shipments"])
}

func TestUserResponseOmitsPassword(t *testing.T) {
	u := &User{ID: "u1", Email: "a@tms.local", Password: "hash", Role: RoleAdmin}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.Equal(t, "a@tms.local", u.ToUserResponse().Email)
}
