// Package ez 一行注册非 CRUD 接口：绑定入参 → 调用 → 统一信封 / 错误映射。
package ez

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"booking-users/internal/domain"
	mdw "booking-users/internal/transport/http/middleware"
	resp "booking-users/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group 子路径，共用 logger
func (e EZ) Group(path string, h ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, h...), log: e.log}
}

type Binder string

const (
	BindJSON  Binder = "json"  // JSON body
	BindQuery Binder = "query" // ?a=b
	BindForm  Binder = "form"  // 按 Content-Type 选择 JSON / form / multipart
	BindNone  Binder = "none"  // handler 自己取 c.Param 等
)

// AErr 边界层错误；Code 同时作为 HTTP 状态码
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// File 非信封响应（导出文件、图片）；Data 必须已完整渲染
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Inline      bool
}

type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int      // 成功状态码，默认 200
	Roles   []string // 非空时要求 AuthJWT 写入的角色命中其一
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		if len(a.Roles) > 0 && !slices.Contains(a.Roles, c.GetString(mdw.KeyRole)) {
			resp.Abort(c, resp.CodeForbidden, "")
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		}
		if bindErr != nil {
			resp.Abort(c, resp.CodeBadRequest, "invalid request: "+bindErr.Error())
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		if f, ok := any(out).(File); ok {
			writeFile(c, status, f)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// fail 错误映射：校验 400 / 不存在 404 / 其余 500（只回通用文案，原因写日志）
func (e EZ) fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			e.logError(c, err)
		}
		resp.Abort(c, ae.Code, ae.Error())
		return
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		resp.Abort(c, resp.CodeBadRequest, err.Error())
	case domain.KindNotFound:
		resp.Abort(c, resp.CodeNotFound, err.Error())
	default:
		e.logError(c, err)
		resp.Abort(c, resp.CodeServerError, "internal error")
	}
}

func (e EZ) logError(c *gin.Context, err error) {
	e.log.Error("request failed",
		zap.String("rid", c.GetString(mdw.KeyRequestID)),
		zap.String("path", c.FullPath()),
		zap.String("kind", domain.KindOf(err).String()),
		zap.Error(err),
	)
}

func writeFile(c *gin.Context, status int, f File) {
	if f.Name != "" {
		disp := "attachment"
		if f.Inline {
			disp = "inline"
		}
		c.Header("Content-Disposition", disp+"; filename="+f.Name)
	}
	c.Header("Cache-Control", "no-store")
	c.Data(status, f.ContentType, f.Data)
}
