package types

import "encoding/json"

// PredictionRequest is the inbound payload for POST /api/predictions.
type PredictionRequest struct {
	// Image reference: either a fetchable http(s) URL or a base64 data URL.
	// example: https://example.com/cat.png
	Image string `json:"image,omitempty" example:"https://example.com/cat.png"`
	// Raw base64 image data, with or without a data-URL prefix. Used when
	// the client cannot host the image anywhere fetchable. Ignored when
	// image is also set.
	ImageBase64 string `json:"imageBase64,omitempty"`
	// Optional provider model version id. If empty, the server default is used.
	// example: 4876f2a8da1c544772dffa32e8889da4a1bab3a1f5c1937bfcfccb99ae347251
	Version string `json:"version,omitempty"`
	// Desired output format for the generated model.
	// example: glb
	Format string `json:"format,omitempty" example:"glb"`
}

// PredictionResult carries the provider's verbatim response through the
// proxy: raw status code plus the unmodified JSON body. Non-2xx provider
// statuses travel this path too so the relay stays exact.
type PredictionResult struct {
	Status int
	Body   json.RawMessage
}

// ErrorResponse is the consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: image is required
	Error string `json:"error" example:"image is required"`
}
