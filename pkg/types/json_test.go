package types

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShippingDetailsValuesAsJSON(t *testing.T) {
	var v driver.Valuer = ShippingDetails{Line1: "12 Osun Close", City: "Lagos", Country: "NG"}

	raw, err := v.Value()
	require.NoError(t, err)
	require.Contains(t, string(raw.([]byte)), `"city":"Lagos"`)
}

func TestJSONMapValueScanRoundTrip(t *testing.T) {
	var v driver.Valuer = JSONMap{"last4": "4081"}

	raw, err := v.Value()
	require.NoError(t, err)

	var decoded JSONMap
	require.NoError(t, decoded.Scan(raw))
	require.Equal(t, "4081", decoded["last4"])
}

func TestNilJSONMapValuesAsNull(t *testing.T) {
	raw, err := JSONMap(nil).Value()
	require.NoError(t, err)
	require.Nil(t, raw)
}
