package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/repository/memory"
	"shopfront/internal/upload"
	"shopfront/internal/viewmodel"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testApp struct {
	t       *testing.T
	handler http.Handler
	fs      afero.Fs
	admin   string
}

func newTestApp(t *testing.T, redisClient *redis.Client) *testApp {
	t.Helper()

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test"},
		JWT:       config.JWTConfig{Secret: testSecret},
		Auth:      config.AuthConfig{AdminRoles: []string{"admin", "supermoderator"}},
		Upload:    config.UploadConfig{Dir: "uploads", MaxImageSizeKB: 300, MaxImageFiles: 2},
		RateLimit: config.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute},
	}

	fs := afero.NewMemMapFs()
	srv := NewServer(cfg, zap.NewNop(), Backend{Units: memory.NewStore()}, upload.NewFileStore(fs, cfg.Upload.Dir), redisClient)

	return &testApp{
		t:       t,
		handler: srv.Handler,
		fs:      fs,
		admin:   signToken(t, "admin-1", "Admin"),
	}
}

func signToken(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testApp) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path, token string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (a *testApp) postJSON(path, token string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(a.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a *testApp) postForm(path, token string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, token)
}

type testFile struct {
	name        string
	contentType string
	size        int
}

func (a *testApp) postMultipart(path, token string, values url.Values, files ...testFile) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(a.t, mw.WriteField(key, v))
		}
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, upload.ImageFieldName, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(a.t, err)
		data := make([]byte, f.size)
		copy(data, pngHeader)
		_, err = part.Write(data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type formErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Details struct {
			ValidationErrors []middleware.ValidationError `json:"validation_errors"`
			Form             json.RawMessage              `json:"form"`
		} `json:"details"`
	} `json:"error"`
}

func fieldsOf(resp formErrorResponse) []string {
	var fields []string
	for _, e := range resp.Error.Details.ValidationErrors {
		fields = append(fields, e.Field)
	}
	return fields
}

// seedCatalog creates one category and one brand through the admin routes.
func (a *testApp) seedCatalog() (uuid.UUID, uuid.UUID) {
	a.t.Helper()

	require.Equal(a.t, http.StatusSeeOther, a.postJSON("/Admin/Category/Create", a.admin, map[string]string{"name": "Shoes"}).Code)
	require.Equal(a.t, http.StatusSeeOther, a.postJSON("/Admin/Brand/Create", a.admin, map[string]string{"name": "Acme"}).Code)

	categories := decode[viewmodel.CategoryListView](a.t, a.get("/Admin/Category", a.admin))
	brands := decode[viewmodel.BrandListView](a.t, a.get("/Admin/Brand", a.admin))
	require.Len(a.t, categories.Categories, 1)
	require.Len(a.t, brands.Brands, 1)
	return categories.Categories[0].ID, brands.Brands[0].ID
}

func productValues(name string, categoryID, brandID uuid.UUID) url.Values {
	return url.Values{
		"name":        {name},
		"description": {"about " + name},
		"price":       {"19.99"},
		"count":       {"4"},
		"category_id": {categoryID.String()},
		"brand_id":    {brandID.String()},
	}
}

func (a *testApp) products(query string) []*domain.Product {
	a.t.Helper()
	w := a.get("/Admin/Product"+query, a.admin)
	require.Equal(a.t, http.StatusOK, w.Code)
	return decode[viewmodel.ProductAdminView](a.t, w).Products
}

func (a *testApp) storedFiles() int {
	a.t.Helper()
	entries, err := afero.ReadDir(a.fs, "uploads")
	if err != nil {
		return 0
	}
	return len(entries)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.get("/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode[map[string]string](t, w)["status"])
}

func TestAdminRequiresAdminRole(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, http.StatusUnauthorized, app.get("/Admin/Product", "").Code)
	assert.Equal(t, http.StatusForbidden, app.get("/Admin/Product", signToken(t, "u-1", "customer")).Code)
	assert.Equal(t, http.StatusOK, app.get("/Admin/Product", signToken(t, "m-1", "SuperModerator")).Code)
	assert.Equal(t, http.StatusForbidden, app.get("/Admin/Discount", signToken(t, "u-1", "customer")).Code)
}

func TestProductCreateWithImages(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	w := app.postMultipart("/Admin/Product/Create", app.admin, productValues("Red Shoe", categoryID, brandID),
		testFile{name: "a.png", contentType: "image/png", size: 299 * 1024},
		testFile{name: "b.png", contentType: "image/png", size: 1024},
	)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/Admin/Product", w.Header().Get("Location"))

	products := app.products("")
	require.Len(t, products, 1)
	assert.Equal(t, "Red Shoe", products[0].Name)
	assert.Equal(t, 2, app.storedFiles())

	detail := decode[viewmodel.ProductDetailView](t, app.get("/Admin/Product/ProductDetail/"+products[0].ID.String(), app.admin))
	assert.Len(t, detail.ProductImages, 2)
}

func TestProductCreateRejectsNonImage(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	w := app.postMultipart("/Admin/Product/Create", app.admin, productValues("Red Shoe", categoryID, brandID),
		testFile{name: "notes.txt", contentType: "text/plain", size: 10},
	)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[formErrorResponse](t, w)
	assert.Equal(t, []string{upload.ImageFieldName}, fieldsOf(resp))

	var echoed viewmodel.ProductFormView
	require.NoError(t, json.Unmarshal(resp.Error.Details.Form, &echoed))
	form, ok := echoed.Form.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Red Shoe", form["name"])
	assert.Len(t, echoed.Categories, 1)

	assert.Empty(t, app.products(""))
	assert.Zero(t, app.storedFiles())
}

func TestProductCreateRejectsOversizedImage(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	w := app.postMultipart("/Admin/Product/Create", app.admin, productValues("Red Shoe", categoryID, brandID),
		testFile{name: "big.png", contentType: "image/png", size: 301 * 1024},
	)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{upload.ImageFieldName}, fieldsOf(decode[formErrorResponse](t, w)))
	assert.Empty(t, app.products(""))
}

func TestProductCreateRejectsOversizedBody(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	// Two images at the limit plus the form overhead is the most a body may carry
	w := app.postMultipart("/Admin/Product/Create", app.admin, productValues("Red Shoe", categoryID, brandID),
		testFile{name: "a.png", contentType: "image/png", size: 1 << 20},
		testFile{name: "b.png", contentType: "image/png", size: 1 << 20},
	)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, app.products(""))
	assert.Zero(t, app.storedFiles())
}

func TestProductCreateFieldErrors(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	values := productValues("", categoryID, brandID)
	values.Set("count", "many")
	values.Set("brand_id", uuid.NewString())

	w := app.postForm("/Admin/Product/Create", app.admin, values)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"count", "name"}, fieldsOf(decode[formErrorResponse](t, w)))

	// Unknown references surface once the form itself is valid
	values = productValues("Lamp", categoryID, uuid.New())
	w = app.postForm("/Admin/Product/Create", app.admin, values)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"brand_id"}, fieldsOf(decode[formErrorResponse](t, w)))
}

func TestProductSearch(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	for _, name := range []string{"Red Shoe", "Blue Hat"} {
		require.Equal(t, http.StatusSeeOther, app.postForm("/Admin/Product/Create", app.admin, productValues(name, categoryID, brandID)).Code)
	}

	found := app.products("?productSearch=red")
	require.Len(t, found, 1)
	assert.Equal(t, "Red Shoe", found[0].Name)
	assert.Len(t, app.products("?productSearch="), 2)

	cards := decode[[]viewmodel.ProductCard](t, app.get("/products?search=HAT", ""))
	require.Len(t, cards, 1)
	assert.Equal(t, "Blue Hat", cards[0].Name)
}

func TestProductUpdateDeleteRestore(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	require.Equal(t, http.StatusSeeOther, app.postForm("/Admin/Product/Create", app.admin, productValues("Lamp", categoryID, brandID)).Code)
	product := app.products("")[0]
	path := product.ID.String()

	edit := decode[struct {
		Form viewmodel.ProductUpdateForm `json:"form"`
	}](t, app.get("/Admin/Product/Update/"+path, app.admin))
	assert.Equal(t, "Lamp", edit.Form.Name)

	values := productValues("Desk Lamp", categoryID, brandID)
	values.Set("is_discount", "on")
	values.Set("discount_price", "9.50")
	require.Equal(t, http.StatusSeeOther, app.postForm("/Admin/Product/Update/"+path, app.admin, values).Code)
	assert.Equal(t, "Desk Lamp", app.products("")[0].Name)

	require.Equal(t, http.StatusSeeOther, app.get("/Admin/Product/Delete/"+path, app.admin).Code)
	assert.Empty(t, app.products(""))
	assert.Equal(t, http.StatusNotFound, app.get("/Admin/Product/ProductDetail/"+path, app.admin).Code)
	assert.Equal(t, http.StatusNotFound, app.get("/products/"+path, "").Code)

	require.Equal(t, http.StatusSeeOther, app.do(httptest.NewRequest(http.MethodPost, "/Admin/Product/Restore/"+path, nil), app.admin).Code)
	view := decode[viewmodel.StorefrontProductView](t, app.get("/products/"+path, ""))
	assert.Equal(t, "9.5", view.FinalPrice.String())
}

func TestProductMissing(t *testing.T) {
	app := newTestApp(t, nil)
	missing := uuid.NewString()

	assert.Equal(t, http.StatusNotFound, app.get("/Admin/Product/Update/"+missing, app.admin).Code)
	assert.Equal(t, http.StatusNotFound, app.get("/Admin/Product/Delete/"+missing, app.admin).Code)
	assert.Equal(t, http.StatusNotFound, app.get("/Admin/Product/ProductDetail/not-an-id", app.admin).Code)

	// A missing product is reported even when the form is invalid
	w := app.postForm("/Admin/Product/Update/"+missing, app.admin, url.Values{"name": {""}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiscountTimer(t *testing.T) {
	app := newTestApp(t, nil)
	endsAt := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	w := app.postJSON("/Admin/Discount/Update", app.admin, map[string]string{
		"title":   "Summer Sale",
		"ends_at": endsAt.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/Admin/Discount", w.Header().Get("Location"))

	view := decode[viewmodel.DiscountView](t, app.get("/Admin/Discount", app.admin))
	assert.Equal(t, "Summer Sale", view.Title)
	assert.True(t, view.EndsAt.Equal(endsAt))
	assert.True(t, view.Active)

	public := decode[viewmodel.DiscountView](t, app.get("/discount", ""))
	assert.Equal(t, "Summer Sale", public.Title)

	w = app.postForm("/Admin/Discount/Update", app.admin, url.Values{"title": {"No date"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"ends_at"}, fieldsOf(decode[formErrorResponse](t, w)))
}

func TestCategoryLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, _ := app.seedCatalog()
	path := categoryID.String()

	w := app.postForm("/Admin/Category/Update/"+path, app.admin, url.Values{"name": {"Boots"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/Admin/Category", w.Header().Get("Location"))

	w = app.postForm("/Admin/Category/Create", app.admin, url.Values{"name": {""}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"name"}, fieldsOf(decode[formErrorResponse](t, w)))

	require.Equal(t, http.StatusSeeOther, app.get("/Admin/Category/Delete/"+path, app.admin).Code)
	assert.Empty(t, decode[viewmodel.CategoryListView](t, app.get("/Admin/Category", app.admin)).Categories)
	assert.Equal(t, http.StatusNotFound, app.get("/Admin/Category/Update/"+path, app.admin).Code)
}

func TestImageAndCommentModeration(t *testing.T) {
	app := newTestApp(t, nil)
	categoryID, brandID := app.seedCatalog()

	require.Equal(t, http.StatusSeeOther, app.postMultipart("/Admin/Product/Create", app.admin,
		productValues("Lamp", categoryID, brandID),
		testFile{name: "a.png", contentType: "image/png", size: 100},
	).Code)
	product := app.products("")[0]
	productPath := product.ID.String()

	shopper := signToken(t, "shopper-1", "customer")
	w := app.postJSON("/products/"+productPath+"/comments", shopper, map[string]string{"text": "Bright!"})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	comments := decode[viewmodel.CommentListView](t, app.get("/Admin/Comment", app.admin)).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "shopper-1", comments[0].UserID)

	require.Equal(t, http.StatusSeeOther, app.get("/Admin/Comment/Delete/"+comments[0].ID.String(), app.admin).Code)
	assert.Empty(t, decode[viewmodel.CommentListView](t, app.get("/Admin/Comment", app.admin)).Comments)

	images := decode[viewmodel.ProductAdminView](t, app.get("/Admin/Product", app.admin)).ProductImages
	require.Len(t, images, 1)
	w = app.get("/Admin/ProductImage/Delete/"+images[0].ID.String(), app.admin)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/Admin/Product/Update/"+productPath, w.Header().Get("Location"))
}

func TestCommentPosting(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := newTestApp(t, redisClient)
	categoryID, brandID := app.seedCatalog()

	require.Equal(t, http.StatusSeeOther, app.postForm("/Admin/Product/Create", app.admin, productValues("Lamp", categoryID, brandID)).Code)
	path := "/products/" + app.products("")[0].ID.String() + "/comments"
	shopper := signToken(t, "shopper-1", "customer")

	assert.Equal(t, http.StatusUnauthorized, app.postJSON(path, "", map[string]string{"text": "hi"}).Code)

	w := app.postJSON(path, shopper, map[string]string{"text": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"text"}, fieldsOf(decode[formErrorResponse](t, w)))

	assert.Equal(t, http.StatusSeeOther, app.postJSON(path, shopper, map[string]string{"text": "second"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, app.postJSON(path, shopper, map[string]string{"text": "third"}).Code)

	missing := "/products/" + uuid.NewString() + "/comments"
	assert.Equal(t, http.StatusNotFound, app.postJSON(missing, signToken(t, "shopper-2", "customer"), map[string]string{"text": "hi"}).Code)
}
