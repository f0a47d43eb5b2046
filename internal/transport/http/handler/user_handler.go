package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
	"booking-users/internal/transport/http/ez"
)

const profileImageField = "profileImage"

// UserHandler 公共接口 /api/v1/users
type UserHandler struct {
	dir    Directory
	export ExportOptions
	log    *zap.Logger
}

func NewUserHandler(dir Directory, opts ExportOptions, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{dir: dir, export: opts, log: l}
}

type createForm struct {
	FirstName   string `form:"firstName" json:"firstName"`
	LastName    string `form:"lastName" json:"lastName"`
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
}

type updateForm struct {
	FirstName   string `form:"firstName" json:"firstName"`
	LastName    string `form:"lastName" json:"lastName"`
	Email       string `form:"email" json:"email"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log).Group("/users")

	ez.RegisterAction(e, ez.Action[createForm, *user.DTO]{
		Method: http.MethodPost,
		Path:   "/create",
		Binder: ez.BindForm,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createForm) (*user.DTO, error) {
			img, err := readImage(c)
			if err != nil {
				return nil, err
			}
			return h.dir.Create(c.Request.Context(), user.CreateInput{
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       in.Email,
				Password:    in.Password,
				PhoneNumber: in.PhoneNumber,
				Image:       img,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[listQuery, domain.Page[user.DTO]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *listQuery) (domain.Page[user.DTO], error) {
			pr, err := q.request()
			if err != nil {
				return domain.Page[user.DTO]{}, err
			}
			return h.dir.List(c.Request.Context(), pr)
		},
	})

	for _, format := range []string{FormatPDF, FormatCSV, FormatXLSX} {
		ez.RegisterAction(e, ez.Action[struct{}, ez.File]{
			Method: http.MethodGet,
			Path:   "/" + format,
			Binder: ez.BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (ez.File, error) {
				return renderExport(c.Request.Context(), h.dir, h.export, format)
			},
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, ez.File]{
		Method: http.MethodGet,
		Path:   "/images/:ref",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (ez.File, error) {
			ref := c.Param("ref")
			data, err := h.dir.ProfileImage(c.Request.Context(), ref)
			if err != nil {
				return ez.File{}, err
			}
			return ez.File{Name: ref, ContentType: mimetype.Detect(data).String(), Data: data, Inline: true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *user.DTO]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*user.DTO, error) {
			return h.dir.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[updateForm, *user.DTO]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *updateForm) (*user.DTO, error) {
			img, err := readImage(c)
			if err != nil {
				return nil, err
			}
			return h.dir.Update(c.Request.Context(), c.Param("id"), user.UpdateInput{
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       in.Email,
				PhoneNumber: in.PhoneNumber,
				Image:       img,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, string]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.dir.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return "", err
			}
			return "User is deleted", nil
		},
	})
}

// readImage 只在 multipart 请求里取可选的头像文件
func readImage(c *gin.Context) (*user.ImageUpload, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile(profileImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, ez.BadRequest("invalid " + profileImageField + ": " + err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return nil, ez.BadRequest("invalid " + profileImageField + ": " + err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ez.BadRequest("read " + profileImageField + ": " + err.Error())
	}
	return &user.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
