package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"booking-users/internal/core/auth"
	"booking-users/internal/core/config"
	"booking-users/internal/core/database"
	"booking-users/internal/core/server"
	"booking-users/internal/core/storage"
	"booking-users/internal/feature/user"
	"booking-users/internal/repo"
	"booking-users/internal/service"
	"booking-users/internal/transport/http/handler"
	"booking-users/internal/transport/http/router"
	"booking-users/pkg/utils"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake image body")

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type app struct {
	api   *gin.Engine
	admin *gin.Engine
	jwt   *auth.JWTer
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "http.db"),
		LogLevel:     "silent",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("NewGorm: %v", err)
	}
	r := repo.NewUserRepo(db)
	if err := r.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	images := storage.NewLocalImageStore(afero.NewMemMapFs(), "/uploads")
	if err := images.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	svc := service.NewUserService(r, utils.NewBcryptHasher(bcrypt.MinCost), images, nil, service.Options{})
	exp := handler.ExportOptions{Title: "Users", Now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }}

	jwter, err := auth.NewJWTer("test-secret", "booking-users", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTer: %v", err)
	}
	reg := router.NewRegistry(handler.NewUserHandler(svc, exp, nil), handler.NewAdminHandler(svc, exp, nil))
	opts := router.Options{
		Server: server.Options{Mode: gin.TestMode},
		Limits: config.Limits{MaxBodyBytes: 1 << 20, RequestTimeoutSec: 5},
	}
	return &app{
		api:   router.NewAPIEngine(zap.NewNop(), reg, opts),
		admin: router.NewAdminEngine(zap.NewNop(), reg, jwter, opts),
		jwt:   jwter,
	}
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func createForm(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("profileImage", "me.png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(image)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/create", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func userFields(i int) map[string]string {
	return map[string]string{
		"firstName":   fmt.Sprintf("First%d", i),
		"lastName":    "Tester",
		"email":       fmt.Sprintf("user%d@example.com", i),
		"password":    "pw-" + fmt.Sprint(i),
		"phoneNumber": "555-0100",
	}
}

func mustCreate(t *testing.T, a *app, i int, image []byte) user.DTO {
	t.Helper()
	w := do(a.api, createForm(t, userFields(i), image))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var dto user.DTO
	decode(t, w, &dto)
	return dto
}

func TestCreate_MultipartWithImage(t *testing.T) {
	a := newApp(t)
	w := do(a.api, createForm(t, userFields(1), pngBytes))
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "password") {
		t.Fatalf("response leaks credential: %s", w.Body.String())
	}
	var dto user.DTO
	env := decode(t, w, &dto)
	if env.Code != 0 || dto.ID == "" || dto.ProfilePicture == nil {
		t.Fatalf("unexpected create result %+v %+v", env, dto)
	}

	img := do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users/images/"+url.PathEscape(*dto.ProfilePicture), nil))
	if img.Code != http.StatusOK || !bytes.Equal(img.Body.Bytes(), pngBytes) {
		t.Fatalf("image fetch: %d", img.Code)
	}
	if ct := img.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("image content type %q", ct)
	}
}

func TestCreate_ValidationIs400(t *testing.T) {
	a := newApp(t)
	fields := userFields(1)
	delete(fields, "email")
	w := do(a.api, createForm(t, fields, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if env := decode(t, w, nil); !strings.Contains(env.Msg, "email is required") {
		t.Fatalf("msg %q", env.Msg)
	}

	w = do(a.api, createForm(t, userFields(2), []byte("plain text, not an image")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-image upload: %d", w.Code)
	}
}

func TestList_PageEnvelope(t *testing.T) {
	a := newApp(t)
	for i := 0; i < 12; i++ {
		mustCreate(t, a, i, nil)
	}

	var page struct {
		Items []user.DTO `json:"items"`
		Total int64      `json:"total"`
		Page  int        `json:"page"`
		Size  int        `json:"size"`
		Sort  string     `json:"sort"`
	}
	w := do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&size=5&sort=email,desc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &page)
	if page.Total != 12 || len(page.Items) != 5 || page.Page != 1 || page.Size != 5 || page.Sort != "email,desc" {
		t.Fatalf("unexpected page %+v", page)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].Email < page.Items[i].Email {
			t.Fatalf("not sorted desc: %s before %s", page.Items[i-1].Email, page.Items[i].Email)
		}
	}

	w = do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	decode(t, w, &page)
	if page.Size != 10 || len(page.Items) != 10 || page.Page != 0 {
		t.Fatalf("defaults not applied: %+v", page)
	}

	if w := do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users?sort=password", nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown sort key: %d", w.Code)
	}
}

func TestUpdateDelete_NotFound(t *testing.T) {
	a := newApp(t)
	body := `{"firstName":"A","lastName":"B","email":"a@example.com","phoneNumber":"1"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/missing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if w := do(a.api, req); w.Code != http.StatusNotFound {
		t.Fatalf("update missing: %d", w.Code)
	}
	if w := do(a.api, httptest.NewRequest(http.MethodDelete, "/api/v1/users/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
}

func TestUpdateThenDelete(t *testing.T) {
	a := newApp(t)
	u := mustCreate(t, a, 1, nil)

	body := `{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","phoneNumber":"555-0199"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+u.ID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(a.api, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var got user.DTO
	decode(t, w, &got)
	if got.ID != u.ID || got.FirstName != "Grace" || got.Email != "grace@example.com" {
		t.Fatalf("unexpected update result %+v", got)
	}

	w = do(a.api, httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+u.ID, nil))
	var msg string
	decode(t, w, &msg)
	if w.Code != http.StatusOK || msg != "User is deleted" {
		t.Fatalf("delete: %d %q", w.Code, msg)
	}
	if w := do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+u.ID, nil)); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
}

func TestExports_Headers(t *testing.T) {
	a := newApp(t)
	mustCreate(t, a, 1, nil)
	mustCreate(t, a, 2, nil)

	cases := []struct {
		path, ctype, file string
		magic             []byte
	}{
		{"/api/v1/users/csv", "text/csv", "users.csv", []byte("ID,First Name")},
		{"/api/v1/users/pdf", "application/pdf", "users.pdf", []byte("%PDF-")},
		{"/api/v1/users/xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "users.xlsx", []byte("PK")},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			w := do(a.api, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.ctype) {
				t.Fatalf("content type %q", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename="+tc.file {
				t.Fatalf("disposition %q", cd)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), tc.magic) {
				t.Fatalf("unexpected body prefix %q", w.Body.Bytes()[:min(8, w.Body.Len())])
			}
		})
	}

	w := do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users/csv", nil))
	if lines := strings.Count(w.Body.String(), "\n"); lines != 3 {
		t.Fatalf("csv lines %d, want 3", lines)
	}
}

func TestAdmin_RequiresAdminToken(t *testing.T) {
	a := newApp(t)
	u := mustCreate(t, a, 7, nil)

	if w := do(a.admin, httptest.NewRequest(http.MethodGet, "/admin/v1/users", nil)); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	userTok, _ := a.jwt.Issue("u1", auth.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/admin/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	if w := do(a.admin, req); w.Code != http.StatusForbidden {
		t.Fatalf("user token: %d", w.Code)
	}

	adminTok, _ := a.jwt.Issue("ops", auth.RoleAdmin)
	authed := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminTok)
		return do(a.admin, req)
	}

	w := authed(http.MethodGet, "/admin/v1/users/by-email?email="+url.QueryEscape(u.Email))
	var got user.DTO
	decode(t, w, &got)
	if w.Code != http.StatusOK || got.ID != u.ID {
		t.Fatalf("by-email: %d %+v", w.Code, got)
	}
	if w := authed(http.MethodGet, "/admin/v1/users/by-email?email=nobody@example.com"); w.Code != http.StatusNotFound {
		t.Fatalf("by-email missing: %d", w.Code)
	}
	if w := authed(http.MethodGet, "/admin/v1/users/by-email?email=not-an-email"); w.Code != http.StatusBadRequest {
		t.Fatalf("by-email invalid: %d", w.Code)
	}
	if w := authed(http.MethodGet, "/admin/v1/users/export/xlsx"); w.Code != http.StatusOK {
		t.Fatalf("admin export: %d", w.Code)
	}
	if w := authed(http.MethodGet, "/admin/v1/users/export/doc"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown format: %d", w.Code)
	}
	if w := authed(http.MethodDelete, "/admin/v1/users/"+u.ID); w.Code != http.StatusOK {
		t.Fatalf("admin delete: %d", w.Code)
	}
	if w := authed(http.MethodDelete, "/admin/v1/users/"+u.ID); w.Code != http.StatusNotFound {
		t.Fatalf("admin delete twice: %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)
	if w := do(a.api, httptest.NewRequest(http.MethodGet, "/health", nil)); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	do(a.api, httptest.NewRequest(http.MethodGet, "/api/v1/users/csv", nil))
	w := do(a.api, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `user_exports_total{format="csv",result="ok"}`) {
		t.Fatalf("metrics missing export counter: %d", w.Code)
	}
}

func TestRegistry_Priority(t *testing.T) {
	var order []string
	reg := router.NewRegistry(prioMod{"late", 200, &order}, prioMod{"early", 1, &order}, struct{}{})
	g := gin.New()
	reg.MountAPI(g.Group("/"))
	if strings.Join(order, ",") != "early,late" {
		t.Fatalf("mount order %v", order)
	}
}

type prioMod struct {
	name  string
	prio  int
	order *[]string
}

func (m prioMod) MountAPI(*gin.RouterGroup) { *m.order = append(*m.order, m.name) }
func (m prioMod) Priority() int             { return m.prio }
