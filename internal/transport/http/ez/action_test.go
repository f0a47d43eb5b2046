package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"booking-users/internal/domain"
	resp "booking-users/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name string `form:"name" json:"name"`
	N    int    `form:"n" json:"n"`
}

func newEngine(register func(EZ)) *gin.Engine {
	r := gin.New()
	register(New(r.Group("/"), nil))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) resp.Resp {
	t.Helper()
	var r resp.Resp
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return r
}

func TestRegisterAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", fmt.Errorf("%w: email is required", domain.ErrValidation), 400, "validation failed: email is required"},
		{"not found", fmt.Errorf("%w: user 42", domain.ErrNotFound), 404, "not found: user 42"},
		{"storage", fmt.Errorf("%w: disk full /var/secret", domain.ErrStorage), 500, "internal error"},
		{"export", fmt.Errorf("%w: fpdf", domain.ErrExport), 500, "internal error"},
		{"unknown", errors.New("boom"), 500, "internal error"},
		{"aerr", Forbidden("nope"), 403, "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(func(e EZ) {
				RegisterAction(e, Action[struct{}, string]{
					Method: http.MethodGet,
					Path:   "/x",
					Binder: BindNone,
					Handler: func(*gin.Context, *struct{}) (string, error) {
						return "", tc.err
					},
				})
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != tc.status {
				t.Fatalf("status %d, want %d", w.Code, tc.status)
			}
			body := decode(t, w)
			if body.Code != tc.status || body.Msg != tc.msg {
				t.Fatalf("body %+v", body)
			}
		})
	}
}

func TestRegisterAction_BindAndStatus(t *testing.T) {
	r := newEngine(func(e EZ) {
		RegisterAction(e, Action[echoIn, echoIn]{
			Method: http.MethodPost,
			Path:   "/echo",
			Binder: BindForm,
			Status: http.StatusCreated,
			Handler: func(_ *gin.Context, in *echoIn) (echoIn, error) {
				return *in, nil
			},
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("name=ada&n=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"name":"ada"`) || !strings.Contains(w.Body.String(), `"n":3`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("n=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on bind failure, got %d", w.Code)
	}
}

func TestRegisterAction_File(t *testing.T) {
	r := newEngine(func(e EZ) {
		RegisterAction(e, Action[struct{}, File]{
			Method: http.MethodGet,
			Path:   "/f",
			Binder: BindNone,
			Handler: func(*gin.Context, *struct{}) (File, error) {
				return File{Name: "users.csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
			},
		})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/f", nil))
	if w.Code != http.StatusOK || w.Body.String() != "a,b\n" {
		t.Fatalf("status %d body %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=users.csv" {
		t.Fatalf("disposition %q", got)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("content type %q", got)
	}
}

func TestRegisterAction_Roles(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("role", c.GetHeader("X-Role")) })
	RegisterAction(New(r.Group("/"), nil), Action[struct{}, string]{
		Method: http.MethodGet,
		Path:   "/r",
		Binder: BindNone,
		Roles:  []string{"admin"},
		Handler: func(*gin.Context, *struct{}) (string, error) {
			return "ok", nil
		},
	})

	for role, want := range map[string]int{"admin": 200, "user": 403, "": 403} {
		req := httptest.NewRequest(http.MethodGet, "/r", nil)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("role %q: status %d, want %d", role, w.Code, want)
		}
	}
}
