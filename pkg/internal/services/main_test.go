package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	localCache "github.com/desmin2102/HostelApp/pkg/internal/cache"
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/database/dbtest"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services/gomaps"
	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/desmin2102/HostelApp/pkg/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	coords gomaps.Coordinates
	err    error
	failed map[string]error
	calls  []string
}

func (v *fakeGeocoder) Resolve(ctx context.Context, address, ward, district, city string) (gomaps.Coordinates, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, gomaps.ComposeAddress(address, ward, district, city))
	if err, ok := v.failed[address]; ok {
		return gomaps.Coordinates{}, err
	}
	return v.coords, v.err
}

func (v *fakeGeocoder) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (v *fakeDispatcher) Dispatch(ctx context.Context, msg mailer.Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sent = append(v.sent, msg)
	return nil
}

func (v *fakeDispatcher) Sent() []mailer.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]mailer.Message(nil), v.sent...)
}

// fixture is a small city with two districts of two wards each, plus one account per role.
type fixture struct {
	geocoder   *fakeGeocoder
	dispatcher *fakeDispatcher
	images     *storage.MemoryStore

	city      models.City
	otherCity models.City
	districts []models.District
	wards     [][]models.Ward

	owner      models.Account
	otherOwner models.Account
	tenant     models.Account
	staff      models.Account
}

func setupServices(t *testing.T) *fixture {
	t.Helper()
	dbtest.Open(t)

	prevStore := localCache.S
	localCache.S = nil
	t.Cleanup(func() {
		localCache.S = prevStore
		Geocoder, Dispatcher, Images = nil, nil, nil
	})

	f := &fixture{
		geocoder: &fakeGeocoder{coords: gomaps.Coordinates{
			Latitude:  10.7769,
			Longitude: 106.7009,
			PlaceID:   "place-1",
		}},
		dispatcher: &fakeDispatcher{},
		images:     storage.NewMemoryStore(),
	}
	Geocoder, Dispatcher, Images = f.geocoder, f.dispatcher, f.images

	f.city = models.City{Name: "Ho Chi Minh", Active: true}
	require.NoError(t, database.C.Create(&f.city).Error)
	f.otherCity = models.City{Name: "Ha Noi", Active: true}
	require.NoError(t, database.C.Create(&f.otherCity).Error)

	for i, name := range []string{"District 1", "District 3"} {
		district := models.District{Name: name, CityID: f.city.ID, Active: true}
		require.NoError(t, database.C.Create(&district).Error)
		f.districts = append(f.districts, district)

		var wards []models.Ward
		for j := 0; j < 2; j++ {
			ward := models.Ward{Name: fmt.Sprintf("Ward %d-%d", i+1, j+1), DistrictID: district.ID, Active: true}
			require.NoError(t, database.C.Create(&ward).Error)
			wards = append(wards, ward)
		}
		f.wards = append(f.wards, wards)
	}

	f.owner = mustAccount(t, 1, "An", models.AccountRoleOwner, "an@example.com")
	f.otherOwner = mustAccount(t, 2, "Binh", models.AccountRoleOwner, "binh@example.com")
	f.tenant = mustAccount(t, 3, "Chi", models.AccountRoleTenant, "chi@example.com")
	f.staff = mustAccount(t, 4, "Dung", models.AccountRoleStaff, "dung@example.com")

	return f
}

func mustAccount(t *testing.T, id uint, name, role, email string) models.Account {
	t.Helper()
	account, err := EnsureAccount(Principal{ID: id, Name: name, Role: role, Email: email})
	require.NoError(t, err)
	return account
}

func makeUploads(n int) []ImageUpload {
	out := make([]ImageUpload, n)
	for i := range out {
		content := fmt.Sprintf("image-%d", i)
		out[i] = ImageUpload{
			Filename:    fmt.Sprintf("photo-%d.JPG", i),
			ContentType: "image/jpeg",
			Size:        int64(len(content)),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(content)), nil
			},
		}
	}
	return out
}

// rentalAt builds an unsaved post in the given district and ward of the fixture city.
func (f *fixture) rentalAt(district, ward int, address string, price int) models.RentalPost {
	return models.RentalPost{
		Title:      "Room at " + address,
		Price:      price,
		Area:       25,
		CityID:     f.city.ID,
		DistrictID: f.districts[district].ID,
		WardID:     f.wards[district][ward].ID,
		Address:    address,
	}
}

// seedRental stores a post directly, skipping the lifecycle checks.
func (f *fixture) seedRental(t *testing.T, district, ward int, price int, approved bool, tags ...string) models.RentalPost {
	t.Helper()
	post := f.rentalAt(district, ward, uuid.NewString(), price)
	post.OwnerID = f.owner.ID
	post.IsApproved = approved
	post.Active = true

	var err error
	post.Tags, err = EnsureTags(database.C, tags)
	require.NoError(t, err)
	require.NoError(t, database.C.Create(&post).Error)
	return post
}

func (f *fixture) seedRequest(t *testing.T, min, max *int, districts []models.District, wards []models.Ward, tags ...string) models.TenantRequest {
	t.Helper()
	item := models.TenantRequest{
		Title:     "Looking for a room",
		CityID:    f.city.ID,
		MinPrice:  min,
		MaxPrice:  max,
		Districts: districts,
		Wards:     wards,
		TenantID:  f.tenant.ID,
		Active:    true,
	}

	var err error
	item.Tags, err = EnsureTags(database.C, tags)
	require.NoError(t, err)
	require.NoError(t, database.C.Omit("Districts.*", "Wards.*").Create(&item).Error)
	return item
}
