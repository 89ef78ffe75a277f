package services

import (
	"context"
	"io"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/services/gomaps"
	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
)

type GeocoderClient interface {
	Resolve(ctx context.Context, address, ward, district, city string) (gomaps.Coordinates, error)
}

// NotificationDispatcher hands a mail off for later delivery and must not block on sending it.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, msg mailer.Message) error
}

type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (id string, size int64, err error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// Set up by main, replaced by fakes in tests.
var (
	Geocoder   GeocoderClient
	Dispatcher NotificationDispatcher
	Images     ImageStore
)

var (
	GeocodeTimeout  = 10 * time.Second
	MinRentalImages = 3
)

// ImageUpload is one file received with a rental post.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
