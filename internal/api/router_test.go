package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"deals_api/internal/app/service"
	"deals_api/internal/common/security"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository/repositorytest"
	"deals_api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
)

type testApp struct {
	t        *testing.T
	router   http.Handler
	store    *repositorytest.Store
	denylist *repositorytest.Denylist
	events   *repositorytest.Events
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:      []byte("router-test-secret"),
		JWTExp:      30 * time.Minute,
		CORSOrigins: []string{"http://localhost:3000"},
		MaxUploadMB: 1,
	}
	security.InitJWT()

	store := repositorytest.NewStore()
	denylist := repositorytest.NewDenylist()
	events := &repositorytest.Events{}

	router := NewRouter(
		service.NewAuthService(store.Users(), denylist),
		service.NewCategoryService(store.Categories()),
		service.NewProductService(store.Products(), store.Categories(), events),
		service.NewLoadLogService(store.LoadLogs()),
		denylist,
	)
	return &testApp{t: t, router: router, store: store, denylist: denylist, events: events}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// login registers username (when new) and returns a bearer token for role.
func (a *testApp) login(username string, role model.Role) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/", "", map[string]string{"username": username, "password": "password123"})
	if rec.Code != http.StatusCreated && rec.Code != http.StatusConflict {
		a.t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body)
	}
	a.store.SetRole(username, role)

	form := url.Values{"username": {username}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	a.router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		a.t.Fatalf("token %s: %d %s", username, res.Code, res.Body)
	}
	var tok service.TokenResponse
	decode(a.t, res, &tok)
	if tok.TokenType != "bearer" {
		a.t.Fatalf("token_type = %q", tok.TokenType)
	}
	return tok.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}

type envelope struct {
	Data           map[string]json.RawMessage `json:"data"`
	AdditionalData map[string]*int            `json:"additional_data"`
}

func (a *testApp) createCategory(token, name string) uint {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/category/create-category/", token, map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create category: %d %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(a.t, rec, &env)
	var c model.Category
	if err := json.Unmarshal(env.Data["Category"], &c); err != nil {
		a.t.Fatal(err)
	}
	return c.ID
}

func (a *testApp) upload(token string, categoryID uint, fileName, content string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		a.t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/product/load-products-by-category/?category_id=%d", categoryID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func csvRows(n int) string {
	var b strings.Builder
	b.WriteString("title,price,rating,discount,date\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Deal %d,$%d.50,%d,%d%%,2024-06-01\n", i, i, i%5, i)
	}
	return b.String()
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(t)

	expiredClaims := map[string]interface{}{"sub": "a@example.com", "id": 1, "role": "admin", "jti": "x"}
	jwtauth.SetExpiry(expiredClaims, time.Now().Add(-time.Minute))
	_, expired, _ := security.TokenAuth.Encode(expiredClaims)

	foreign := jwtauth.New(security.Algorithm, []byte("someone-else"), nil)
	foreignClaims := map[string]interface{}{"sub": "a@example.com", "id": 1, "role": "admin", "jti": "y"}
	jwtauth.SetExpiry(foreignClaims, time.Now().Add(time.Hour))
	_, forged, _ := foreign.Encode(foreignClaims)

	noRoleClaims := map[string]interface{}{"sub": "a@example.com", "id": 1, "jti": "z"}
	jwtauth.SetExpiry(noRoleClaims, time.Now().Add(time.Hour))
	_, noRole, _ := security.TokenAuth.Encode(noRoleClaims)

	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not.a.jwt",
		"expired": expired,
		"forged":  forged,
		"no role": noRole,
	} {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"/", "/category/list-categories/", "/product/list-products/"} {
				rec := app.do(http.MethodGet, path, token, nil)
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("%s: status = %d, want 401", path, rec.Code)
				}
				if msg := errorText(t, rec); msg != "Could not validate credentials" {
					t.Fatalf("%s: error = %q", path, msg)
				}
			}
		})
	}
}

func TestCurrentUserAndRoleGates(t *testing.T) {
	app := newTestApp(t)
	userToken := app.login("user@example.com", model.RoleUser)
	modToken := app.login("mod@example.com", model.RoleMod)

	rec := app.do(http.MethodGet, "/", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	var me security.Claims
	if err := json.Unmarshal(env.Data["User"], &me); err != nil {
		t.Fatal(err)
	}
	if me.Username != "user@example.com" || me.Role != model.RoleUser || me.UserID == 0 {
		t.Fatalf("me = %+v", me)
	}

	if rec := app.do(http.MethodGet, "/", modToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("mod GET / = %d, want 403", rec.Code)
	}
	if rec := app.do(http.MethodGet, "/product/list-products/", modToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("mod list products = %d, want 403", rec.Code)
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/category/create-category/"},
		{http.MethodGet, "/category/list-categories/"},
		{http.MethodPost, "/product/create-product/"},
		{http.MethodPut, "/product/delete-product-by-date/"},
		{http.MethodGet, "/product/load-logs/"},
	} {
		rec := app.do(tc.method, tc.path, userToken, map[string]string{"name": "x"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("user %s %s = %d, want 403", tc.method, tc.path, rec.Code)
		}
	}
	if rec := app.do(http.MethodGet, "/product/list-products/", userToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("user list products = %d, want 200", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPost, "/auth/", "", map[string]string{"username": "not-an-email", "password": "password123"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad email = %d, want 422", rec.Code)
	}
	rec = app.do(http.MethodPost, "/auth/", "", map[string]string{"username": "a@example.com", "password": "short"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short password = %d, want 422", rec.Code)
	}
	app.login("a@example.com", model.RoleUser)
	rec = app.do(http.MethodPost, "/auth/", "", map[string]string{"username": "a@example.com", "password": "password123"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate = %d, want 409", rec.Code)
	}

	form := url.Values{"username": {"a@example.com"}, "password": {"wrong-password"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	app.router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized || errorText(t, res) != "Invalid credentials" {
		t.Fatalf("wrong password = %d %s", res.Code, res.Body)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := app.login("bye@example.com", model.RoleUser)

	rec := app.do(http.MethodPost, "/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d %s", rec.Code, rec.Body)
	}
	rec = app.do(http.MethodGet, "/", token, nil)
	if rec.Code != http.StatusUnauthorized || errorText(t, rec) != "Could not validate credentials" {
		t.Fatalf("after logout = %d %s", rec.Code, rec.Body)
	}
}

func TestDenylistErrorFailsClosed(t *testing.T) {
	app := newTestApp(t)
	token := app.login("x@example.com", model.RoleUser)
	app.denylist.Err = errors.New("redis unavailable")

	if rec := app.do(http.MethodGet, "/", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin@example.com", model.RoleAdmin)

	id := app.createCategory(admin, "Laptops")

	rec := app.do(http.MethodGet, fmt.Sprintf("/category/get-category/%d/", id), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get category = %d %s", rec.Code, rec.Body)
	}

	rec = app.do(http.MethodPut, "/category/update-category", admin, map[string]interface{}{"id": id, "name": "Notebooks"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"notebooks"`) {
		t.Fatalf("update category = %d %s", rec.Code, rec.Body)
	}

	rec = app.do(http.MethodGet, "/category/get-category/999/", admin, nil)
	if rec.Code != http.StatusNotFound || errorText(t, rec) != "Category not found." {
		t.Fatalf("missing category = %d %s", rec.Code, rec.Body)
	}

	if rec := app.upload(admin, id, "rows.csv", csvRows(1)); rec.Code != http.StatusCreated {
		t.Fatalf("upload = %d %s", rec.Code, rec.Body)
	}
	rec = app.do(http.MethodDelete, fmt.Sprintf("/category/delete-category/%d/", id), admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete referenced category = %d, want 400", rec.Code)
	}

	empty := app.createCategory(admin, "Empty")
	rec = app.do(http.MethodDelete, fmt.Sprintf("/category/delete-category/%d/", empty), admin, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Category deleted successfully.") {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body)
	}
}

func TestLoadProductsAndPaginate(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin@example.com", model.RoleAdmin)
	user := app.login("user@example.com", model.RoleUser)
	categoryID := app.createCategory(admin, "Deals")

	rec := app.upload(admin, categoryID, "batch.csv", csvRows(10))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload = %d %s", rec.Code, rec.Body)
	}
	var msg struct {
		Message string `json:"message"`
	}
	decode(t, rec, &msg)
	if msg.Message != "File successfully processed and a total of 10 data inserted into the database." {
		t.Fatalf("message = %q", msg.Message)
	}
	if events := app.events.Published(); len(events) != 1 || events[0].LoadedBy != "admin@example.com" {
		t.Fatalf("events = %+v", events)
	}

	if rec := app.upload(admin, categoryID, "batch.txt", csvRows(2)); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-csv upload = %d, want 400", rec.Code)
	}
	if rec := app.upload(admin, 999, "batch.csv", csvRows(2)); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown category upload = %d, want 404", rec.Code)
	}
	if rec := app.upload(admin, categoryID, "batch.csv", csvRows(3)+"Bad,$1,1,1,never\n"); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed upload = %d, want 422", rec.Code)
	}
	if app.store.ProductCount() != 10 {
		t.Fatalf("stored %d products, want 10", app.store.ProductCount())
	}

	if rec := app.upload(admin, categoryID, "more.csv", csvRows(15)); rec.Code != http.StatusCreated {
		t.Fatalf("second upload = %d", rec.Code)
	}

	wantPages := []struct {
		page, items int
		next, prev  *int
	}{
		{1, 10, intPtr(2), nil},
		{2, 10, intPtr(3), intPtr(1)},
		{3, 5, nil, intPtr(2)},
	}
	for _, want := range wantPages {
		rec := app.do(http.MethodGet, fmt.Sprintf("/product/get-product-by-category/?category_id=%d&page=%d&limit=10", categoryID, want.page), user, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("page %d = %d %s", want.page, rec.Code, rec.Body)
		}
		var env envelope
		decode(t, rec, &env)
		var products []model.ProductDeal
		if err := json.Unmarshal(env.Data["ProductDeal"], &products); err != nil {
			t.Fatal(err)
		}
		meta := env.AdditionalData
		if len(products) != want.items || *meta["item_per_page"] != want.items || *meta["total_items"] != 25 {
			t.Fatalf("page %d: items %d meta %s", want.page, len(products), rec.Body)
		}
		if !sameIntPtr(meta["next_page"], want.next) || !sameIntPtr(meta["previous_page"], want.prev) {
			t.Fatalf("page %d: next/prev mismatch in %s", want.page, rec.Body)
		}
	}

	rec = app.do(http.MethodGet, "/product/get-product-by-discount/?order=sideways", user, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad order = %d, want 422", rec.Code)
	}

	rec = app.do(http.MethodGet, "/product/load-logs/", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load logs = %d", rec.Code)
	}
}

func TestProductWriteEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin@example.com", model.RoleAdmin)
	categoryID := app.createCategory(admin, "Audio")

	rec := app.do(http.MethodPost, "/product/create-product/", admin, map[string]interface{}{
		"title": "Headphones", "price": 59.9, "discount": 20, "date": "2024-06-01", "category_id": categoryID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product = %d %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	var product model.ProductDeal
	if err := json.Unmarshal(env.Data["ProductDeal"], &product); err != nil {
		t.Fatal(err)
	}

	rec = app.do(http.MethodPut, "/product/update-product/", admin, map[string]interface{}{"id": product.ID, "title": "Wireless headphones"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Wireless headphones") {
		t.Fatalf("update product = %d %s", rec.Code, rec.Body)
	}

	rec = app.do(http.MethodPut, "/product/products/deactivate-all-by-date/?date=2024-06-01", admin, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "A total of 1 products were deactivated.") {
		t.Fatalf("deactivate = %d %s", rec.Code, rec.Body)
	}

	rec = app.do(http.MethodPut, "/product/delete-product-by-id/", admin, map[string]interface{}{"product_id": product.ID})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete by id = %d %s", rec.Code, rec.Body)
	}

	rec = app.do(http.MethodGet, fmt.Sprintf("/product/get-product-by-id/?product_id=%d", product.ID), admin, nil)
	if rec.Code != http.StatusNotFound || errorText(t, rec) != "Product not found." {
		t.Fatalf("get deleted = %d %s", rec.Code, rec.Body)
	}
	rec = app.do(http.MethodPut, fmt.Sprintf("/product/delete-product-by-id/?product_id=%d", product.ID), admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete twice = %d, want 404", rec.Code)
	}
}

func intPtr(v int) *int { return &v }

func sameIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
