package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/utils"
	"github.com/MKhiriev/tally-sync/models"
)

const (
	deltaSnapshotPath      = "/api/sync/delta"
	imageURLPath           = "/api/verifications/%s/image-url"
	recipientAnalyticsPath = "/api/recipient/analytics"
)

type httpServerAdapter struct {
	client      *utils.HTTPClient
	imageClient *utils.HTTPClient

	now    func() time.Time
	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// cfg.HTTPAddress and configures two clients: one for API calls bounded by
// cfg.RequestTimeout and one for image downloads bounded by
// cfg.ImageTimeout.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(cfg config.Adapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(cfg.RequestTimeout)
	client.SetBaseURL(baseURL)

	// signed URLs are absolute and carry their own auth
	imageClient := utils.NewHTTPClient(cfg.ImageTimeout)

	return &httpServerAdapter{
		client:      client,
		imageClient: imageClient,
		now:         time.Now,
		logger:      logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchDeltaSnapshot implements [ServerAdapter]. It GETs /api/sync/delta and
// decodes the body with [DecodeSnapshot]. Decode errors of single keys are
// logged at warn and kept in the snapshot.
func (h *httpServerAdapter) FetchDeltaSnapshot(ctx context.Context, token string) (models.Snapshot, error) {
	resp, err := h.authedRequest(ctx, token).
		SetHeader("Accept", "application/json").
		Get(deltaSnapshotPath)
	if err != nil {
		return models.Snapshot{}, mapTransportError("delta snapshot request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Snapshot{}, err
	}

	snap, err := DecodeSnapshot(resp.Body(), h.now())
	if err != nil {
		return models.Snapshot{}, err
	}

	log := logger.FromContext(ctx)
	for _, decodeErr := range snap.DecodeErrors {
		log.Warn().
			Err(decodeErr.Err).
			Str("func", "*httpServerAdapter.FetchDeltaSnapshot").
			Str("key", decodeErr.Field).
			Msg("snapshot key could not be decoded, degrading it to empty")
	}

	return snap, nil
}

// RequestImageURL implements [ServerAdapter]. It GETs
// /api/verifications/{id}/image-url and expects {"url": "...", "expires_at": "..."}.
func (h *httpServerAdapter) RequestImageURL(ctx context.Context, token, verificationID string) (models.SignedURL, error) {
	var signed models.SignedURL

	resp, err := h.authedRequest(ctx, token).
		SetResult(&signed).
		Get(fmt.Sprintf(imageURLPath, url.PathEscape(verificationID)))
	if err != nil {
		return models.SignedURL{}, mapTransportError("image url request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SignedURL{}, err
	}

	if signed.URL == "" {
		// resty only decodes into SetResult for json content types
		if err = json.Unmarshal(resp.Body(), &signed); err != nil || signed.URL == "" {
			return models.SignedURL{}, fmt.Errorf("%w: image url response has no url", ErrMalformedResponse)
		}
	}

	return signed, nil
}

// DownloadImage implements [ServerAdapter]. It GETs the signed URL with the
// image client.
func (h *httpServerAdapter) DownloadImage(ctx context.Context, signedURL string) ([]byte, error) {
	resp, err := h.imageClient.R().
		SetContext(ctx).
		Get(signedURL)
	if err != nil {
		return nil, mapTransportError("image download", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	if len(resp.Body()) == 0 {
		return nil, ErrEmptyBody
	}

	return resp.Body(), nil
}

// FetchRecipientAnalytics implements [ServerAdapter]. It GETs
// /api/recipient/analytics.
func (h *httpServerAdapter) FetchRecipientAnalytics(ctx context.Context, token string) (models.RecipientAnalytics, error) {
	resp, err := h.authedRequest(ctx, token).
		SetHeader("Accept", "application/json").
		Get(recipientAnalyticsPath)
	if err != nil {
		return models.RecipientAnalytics{}, mapTransportError("recipient analytics request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RecipientAnalytics{}, err
	}

	var analytics models.RecipientAnalytics
	if err = json.Unmarshal(resp.Body(), &analytics); err != nil {
		return models.RecipientAnalytics{}, fmt.Errorf("%w: decode recipient analytics: %w", ErrMalformedResponse, err)
	}

	return analytics, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context, token string) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token = strings.TrimSpace(token); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
