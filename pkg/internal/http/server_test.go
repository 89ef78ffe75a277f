package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"

	localCache "github.com/desmin2102/HostelApp/pkg/internal/cache"
	"github.com/desmin2102/HostelApp/pkg/internal/database/dbtest"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/desmin2102/HostelApp/pkg/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (v *recordingDispatcher) Dispatch(ctx context.Context, msg mailer.Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sent = append(v.sent, msg)
	return nil
}

func (v *recordingDispatcher) Sent() []mailer.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]mailer.Message(nil), v.sent...)
}

type testEnv struct {
	app        *fiber.App
	dispatcher *recordingDispatcher

	city     models.City
	district models.District
	ward     models.Ward

	owner      string
	otherOwner string
	tenant     string
	staff      string
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	dbtest.Open(t)

	prevStore := localCache.S
	localCache.S = nil
	viper.Set("security.jwt_secret", testSecret)
	env := &testEnv{dispatcher: &recordingDispatcher{}}
	services.Images = storage.NewMemoryStore()
	services.Dispatcher = env.dispatcher
	services.Geocoder = nil
	t.Cleanup(func() {
		localCache.S = prevStore
		viper.Set("security.jwt_secret", "")
		services.Images, services.Dispatcher = nil, nil
	})

	env.app = NewApp()
	MapRoutes(env.app)

	var err error
	env.city, err = services.NewCity("Ho Chi Minh")
	require.NoError(t, err)
	env.district, err = services.NewDistrict(env.city.ID, "District 1")
	require.NoError(t, err)
	env.ward, err = services.NewWard(env.district.ID, "Ben Nghe")
	require.NoError(t, err)

	env.owner = bearer(t, 1, "An", models.AccountRoleOwner, "an@example.com")
	env.otherOwner = bearer(t, 2, "Binh", models.AccountRoleOwner, "binh@example.com")
	env.tenant = bearer(t, 3, "Chi", models.AccountRoleTenant, "chi@example.com")
	env.staff = bearer(t, 4, "Dung", models.AccountRoleStaff, "dung@example.com")

	return env
}

func bearer(t *testing.T, id uint, name, role, email string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(id), 10),
		"name":  name,
		"email": email,
		"role":  role,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (v *testEnv) do(t *testing.T, method, path, auth string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if len(auth) > 0 {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	if len(contentType) > 0 {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}

	resp, err := v.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (v *testEnv) doJSON(t *testing.T, method, path, auth string, payload any) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := jsoniter.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return v.do(t, method, path, auth, body, fiber.MIMEApplicationJSON)
}

func (v *testEnv) rentalForm(t *testing.T, address string, images int, overrides ...[2]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := [][2]string{
		{"title", "Room near Ben Thanh"},
		{"description", "Bright room with a balcony"},
		{"price", "3500000"},
		{"area", "20"},
		{"address", address},
		{"city_id", strconv.FormatUint(uint64(v.city.ID), 10)},
		{"district_id", strconv.FormatUint(uint64(v.district.ID), 10)},
		{"ward_id", strconv.FormatUint(uint64(v.ward.ID), 10)},
		{"tags", "Wifi, Parking"},
	}
	for _, override := range overrides {
		for idx := range fields {
			if fields[idx][0] == override[0] {
				fields[idx][1] = override[1]
			}
		}
	}
	for _, field := range fields {
		require.NoError(t, w.WriteField(field[0], field[1]))
	}
	for i := 0; i < images; i++ {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="photo-%d.png"`, i))
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(fmt.Sprintf("png-%d", i)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, jsoniter.Unmarshal(raw, &out), string(raw))
	return out
}

func TestHealth(t *testing.T) {
	env := setupServer(t)

	status, raw := env.do(t, fiber.MethodGet, "/api/health", "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", decode[map[string]string](t, raw)["status"])
}

func TestAuthentication(t *testing.T) {
	env := setupServer(t)

	status, _ := env.do(t, fiber.MethodGet, "/api/users/me", "", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, fiber.MethodGet, "/api/users/me", "Bearer not-a-token", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "owner"}).
		SignedString([]byte("another-secret"))
	require.NoError(t, err)
	status, _ = env.do(t, fiber.MethodGet, "/api/users/me", "Bearer "+forged, nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw := env.do(t, fiber.MethodGet, "/api/users/me", bearer(t, 9, "Eve", "landlord", ""), nil, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, string(services.KindPermissionDenied), decode[errorBody](t, raw).Error)

	status, raw = env.do(t, fiber.MethodGet, "/api/users/me", env.tenant, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	me := decode[models.Account](t, raw)
	assert.EqualValues(t, 3, me.ID)
	assert.Equal(t, "Chi", me.Name)
	assert.Equal(t, models.AccountRoleTenant, me.Role)
}

func TestRentalPostTitleLength(t *testing.T) {
	env := setupServer(t)

	body, ctype := env.rentalForm(t, "20 Le Loi", 3, [2]string{"title", strings.Repeat("a", 256)})
	status, raw := env.do(t, fiber.MethodPost, "/api/rentals", env.owner, body, ctype)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "title", decode[errorBody](t, raw).Field)

	body, ctype = env.rentalForm(t, "20 Le Loi", 3, [2]string{"title", strings.Repeat("a", 255)})
	status, raw = env.do(t, fiber.MethodPost, "/api/rentals", env.owner, body, ctype)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	assert.Len(t, decode[models.RentalPost](t, raw).Title, 255)
}

func TestRentalPostLifecycle(t *testing.T) {
	env := setupServer(t)

	body, ctype := env.rentalForm(t, "12 Le Loi", 3)
	status, raw := env.do(t, fiber.MethodPost, "/api/rentals", env.owner, body, ctype)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	post := decode[models.RentalPost](t, raw)
	assert.False(t, post.IsApproved)
	assert.Equal(t, 3500000, post.Price)
	assert.Len(t, post.Images, 3)
	assert.Len(t, post.Tags, 2)
	path := fmt.Sprintf("/api/rentals/%d", post.ID)

	status, _ = env.do(t, fiber.MethodGet, path, "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = env.do(t, fiber.MethodGet, path, env.owner, nil, "")
	assert.Equal(t, fiber.StatusOK, status)

	body, ctype = env.rentalForm(t, "12 Le Loi", 3)
	status, raw = env.do(t, fiber.MethodPost, "/api/rentals", env.otherOwner, body, ctype)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, string(services.KindDuplicateAddress), decode[errorBody](t, raw).Error)

	body, ctype = env.rentalForm(t, "14 Le Loi", 3)
	status, _ = env.do(t, fiber.MethodPost, "/api/rentals", env.tenant, body, ctype)
	assert.Equal(t, fiber.StatusForbidden, status)

	body, ctype = env.rentalForm(t, "14 Le Loi", 2)
	status, raw = env.do(t, fiber.MethodPost, "/api/rentals", env.owner, body, ctype)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "images", decode[errorBody](t, raw).Field)

	status, _ = env.do(t, fiber.MethodPost, fmt.Sprintf("/api/owners/%d/follow", 1), env.tenant, nil, "")
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = env.do(t, fiber.MethodPost, "/api/admin"+path+"/approve", env.tenant, nil, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	status, raw = env.do(t, fiber.MethodPost, "/api/admin"+path+"/approve", env.staff, nil, "")
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.True(t, decode[models.RentalPost](t, raw).IsApproved)

	sent := env.dispatcher.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"chi@example.com"}, sent[0].To)

	status, _ = env.do(t, fiber.MethodGet, path, "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)

	type page struct {
		Count int64               `json:"count"`
		Data  []models.RentalPost `json:"data"`
	}
	status, raw = env.do(t, fiber.MethodGet, "/api/rentals?min_price=3000000&max_price=4000000&tags=Wifi", "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	listed := decode[page](t, raw)
	assert.EqualValues(t, 1, listed.Count)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, post.ID, listed.Data[0].ID)

	status, raw = env.do(t, fiber.MethodGet, "/api/rentals?min_price=1&max_price=1000", "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, decode[page](t, raw).Count)

	status, raw = env.do(t, fiber.MethodGet, "/api/rentals?min_price=5&max_price=1", "", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "min_price", decode[errorBody](t, raw).Field)

	image, ok := lo.Find(post.Images, func(item models.RentalImage) bool {
		return item.Filename == "photo-0.png"
	})
	require.True(t, ok)
	status, raw = env.do(t, fiber.MethodGet, fmt.Sprintf("%s/images/%d", path, image.ID), "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "png-0", string(raw))
	status, _ = env.do(t, fiber.MethodGet, fmt.Sprintf("%s/images/%d", path, image.ID+100), "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.do(t, fiber.MethodDelete, path, env.otherOwner, nil, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = env.do(t, fiber.MethodDelete, path, env.owner, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, fiber.MethodGet, path, env.owner, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	// The address is free again once the post is gone
	body, ctype = env.rentalForm(t, "12 Le Loi", 3)
	status, _ = env.do(t, fiber.MethodPost, "/api/rentals", env.otherOwner, body, ctype)
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestTenantRequestsAndInteractions(t *testing.T) {
	env := setupServer(t)

	status, raw := env.doJSON(t, fiber.MethodPost, "/api/requests", env.tenant, fiber.Map{
		"title":     "Need a room near the market",
		"city_id":   env.city.ID,
		"districts": []uint{env.district.ID},
		"min_price": 1000000,
		"max_price": 4000000,
		"tags":      []string{"Wifi"},
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	request := decode[models.TenantRequest](t, raw)
	path := fmt.Sprintf("/api/requests/%d", request.ID)

	status, raw = env.do(t, fiber.MethodGet, fmt.Sprintf("/api/requests?district=%d", env.district.ID), "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, decode[map[string]any](t, raw)["count"])

	status, _ = env.doJSON(t, fiber.MethodPut, path, env.owner, fiber.Map{"max_price": 5000000})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, raw = env.doJSON(t, fiber.MethodPut, path, env.tenant, fiber.Map{"max_price": 5000000})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	edited := decode[models.TenantRequest](t, raw)
	require.NotNil(t, edited.MaxPrice)
	assert.Equal(t, 5000000, *edited.MaxPrice)
	assert.Len(t, edited.Districts, 1)

	status, raw = env.doJSON(t, fiber.MethodPost, path+"/comments", env.owner, fiber.Map{"content": "I have a room for you"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	status, raw = env.doJSON(t, fiber.MethodPost, path+"/comments", env.owner, fiber.Map{"content": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "content", decode[errorBody](t, raw).Field)

	status, raw = env.do(t, fiber.MethodGet, path+"/comments", "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, decode[map[string]any](t, raw)["count"])

	status, _ = env.do(t, fiber.MethodPost, path+"/likes", env.owner, nil, "")
	assert.Equal(t, fiber.StatusCreated, status)
	status, _ = env.do(t, fiber.MethodPost, path+"/likes", env.owner, nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw = env.do(t, fiber.MethodGet, path+"/likes", env.owner, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	likes := decode[map[string]any](t, raw)
	assert.EqualValues(t, 1, likes["count"])
	assert.Equal(t, true, likes["liked"])

	status, _ = env.do(t, fiber.MethodGet, "/api/requests/9999/comments", "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.do(t, fiber.MethodDelete, path, env.tenant, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, fiber.MethodGet, path, "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminRoutes(t *testing.T) {
	env := setupServer(t)

	status, _ := env.doJSON(t, fiber.MethodPost, "/api/admin/cities", "", fiber.Map{"name": "Da Nang"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = env.doJSON(t, fiber.MethodPost, "/api/admin/cities", env.tenant, fiber.Map{"name": "Da Nang"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, raw := env.doJSON(t, fiber.MethodPost, "/api/admin/cities", env.staff, fiber.Map{"name": "Da Nang"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	status, _ = env.doJSON(t, fiber.MethodPost, "/api/admin/cities", env.staff, fiber.Map{"name": "Da Nang"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw = env.doJSON(t, fiber.MethodPost, "/api/admin/districts", env.staff, fiber.Map{"name": "Hai Chau"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "city_id", decode[errorBody](t, raw).Field)

	status, raw = env.doJSON(t, fiber.MethodPost, "/api/admin/categories", env.staff, fiber.Map{"name": "Studio"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = env.do(t, fiber.MethodGet, "/api/cities", "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.City](t, raw), 2)

	status, raw = env.do(t, fiber.MethodGet, fmt.Sprintf("/api/districts?city=%d", env.city.ID), "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.District](t, raw), 1)

	status, raw = env.do(t, fiber.MethodGet, "/api/categories", "", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Category](t, raw), 1)

	status, raw = env.do(t, fiber.MethodGet, "/api/admin/statistics/prices", env.staff, nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "city", decode[errorBody](t, raw).Field)
	status, _ = env.do(t, fiber.MethodGet, "/api/admin/statistics/prices/export?city=9999", env.staff, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = env.do(t, fiber.MethodGet, "/api/admin/statistics/accounts?role=landlord", env.staff, nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
