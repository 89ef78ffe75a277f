package gomaps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcloughlin/geohash"
	"github.com/spf13/viper"
)

const DefaultEndpoint = "https://maps.gomaps.pro/maps/api/geocode/json"

// GeohashPrecision gives cells of roughly five meters.
const GeohashPrecision = 9

// ErrNotFound is returned when the service answered but had no match for the address.
var ErrNotFound = errors.New("geocode: no result for address")

// ServiceError is returned when the geocoding service could not be reached
// or answered with a non-2xx status.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (v *ServiceError) Error() string {
	if v.Err != nil {
		return fmt.Sprintf("geocode: service unavailable: %v", v.Err)
	}
	return fmt.Sprintf("geocode: service returned status %d", v.StatusCode)
}

func (v *ServiceError) Unwrap() error {
	return v.Err
}

type Coordinates struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	PlaceID          string
}

func (v Coordinates) Geohash() string {
	return geohash.EncodeWithPrecision(v.Latitude, v.Longitude, GeohashPrecision)
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(endpoint, apiKey string, timeout time.Duration, retries int) *Client {
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Client{http: client, apiKey: apiKey}
}

func NewClientFromSettings() *Client {
	return NewClient(
		viper.GetString("geocoder.endpoint"),
		viper.GetString("geocoder.api_key"),
		viper.GetDuration("geocoder.timeout"),
		viper.GetInt("geocoder.retries"),
	)
}

// ComposeAddress joins the parts street first, city last.
func ComposeAddress(address, ward, district, city string) string {
	return strings.Join([]string{address, ward, district, city}, ", ")
}

func (v *Client) Resolve(ctx context.Context, address, ward, district, city string) (Coordinates, error) {
	var out geocodeResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": ComposeAddress(address, ward, district, city),
			"key":     v.apiKey,
		}).
		ForceContentType("application/json").
		SetResult(&out).
		Get("")
	if err != nil {
		return Coordinates{}, &ServiceError{Err: err}
	}
	if !resp.IsSuccess() {
		return Coordinates{}, &ServiceError{StatusCode: resp.StatusCode()}
	}
	if len(out.Results) == 0 {
		return Coordinates{}, ErrNotFound
	}

	first := out.Results[0]
	return Coordinates{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		PlaceID:          first.PlaceID,
	}, nil
}
