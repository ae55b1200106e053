package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateLocationRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (req *CreateLocationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Lat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&req.Lon, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type UpdateLocationRequest struct {
	CreateLocationRequest
}
