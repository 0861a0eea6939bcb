package paystackwebhook

import (
	"encoding/json"

	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

func chargeMetadata(data ChargeData) types.JSONMap {
	meta := types.JSONMap{
		"gateway_status": data.Status,
		"channel":        data.Channel,
	}
	if data.PaidAt != "" {
		meta["paid_at"] = data.PaidAt
	}
	if data.Customer != nil && data.Customer.Email != "" {
		meta["customer_email"] = data.Customer.Email
	}
	return meta
}

func authorizationBlob(auth *Authorization) (types.JSONMap, error) {
	raw, err := json.Marshal(auth)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode authorization")
	}
	var blob types.JSONMap
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode authorization")
	}
	return blob, nil
}
