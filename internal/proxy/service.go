package proxy

import (
	"context"
	"strings"

	"meshd/internal/config"
	"meshd/internal/stager"
	"meshd/pkg/types"
)

// PredictionAPI is the downstream prediction-creation capability.
type PredictionAPI interface {
	CreatePrediction(ctx context.Context, version, imageURL, format string) (*types.PredictionResult, error)
}

// Service runs the per-request pipeline: validate, stage, dispatch. It holds
// no state between requests.
type Service struct {
	cfg      config.Config
	api      PredictionAPI
	uploader stager.Uploader
}

// New wires the service from explicit collaborators so tests can substitute
// fakes for both network capabilities.
func New(cfg config.Config, api PredictionAPI, uploader stager.Uploader) *Service {
	return &Service{cfg: cfg, api: api, uploader: uploader}
}

// imageRef normalizes the two accepted request shapes into one image
// reference. image wins over imageBase64; a bare base64 payload gets a PNG
// data-URL prefix so the stager can treat both uniformly.
func imageRef(req types.PredictionRequest) string {
	if req.Image != "" {
		return req.Image
	}
	if req.ImageBase64 == "" {
		return ""
	}
	if strings.HasPrefix(req.ImageBase64, "data:") {
		return req.ImageBase64
	}
	return "data:image/png;base64," + req.ImageBase64
}

// Create resolves the request's image into a fetchable URL and issues the
// single downstream prediction call. The returned result carries the
// provider's status and body verbatim; errors are typed per the taxonomy in
// errors.go.
func (s *Service) Create(ctx context.Context, req types.PredictionRequest) (res *types.PredictionResult, err error) {
	defer func() { predictionsTotal.WithLabelValues(outcomeFor(err)).Inc() }()

	if s.cfg.Token == "" {
		return nil, ErrConfig("REPLICATE_API_TOKEN is not configured")
	}
	ref := imageRef(req)
	if ref == "" {
		return nil, ErrValidation("image is required")
	}
	staged := stager.IsDataURL(ref)
	imageURL, err := stager.Resolve(ctx, ref, s.uploader)
	if err != nil {
		return nil, ErrStaging(err)
	}
	if staged {
		stagedUploadsTotal.Inc()
	}
	version := req.Version
	if version == "" {
		version = s.cfg.ModelVersion
	}
	format := req.Format
	if format == "" {
		format = s.cfg.OutputFormat
	}
	return s.api.CreatePrediction(ctx, version, imageURL, format)
}

// Ready reports whether the service can accept work. The proxy has no warmup
// phase; readiness only reflects that a credential is present.
func (s *Service) Ready() bool { return s.cfg.Token != "" }
