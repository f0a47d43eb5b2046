package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"booking-users/internal/domain"
	"booking-users/internal/feature/user"
)

const DefaultMaxImageBytes = 10 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Options struct {
	MaxImageBytes int64
	Now           func() time.Time
}

// UserService 用户目录：增删改查 + 导出取数
type UserService struct {
	repo     domain.UserRepository
	hasher   domain.PasswordHasher
	images   domain.ImageStore
	log      *zap.Logger
	validate *validator.Validate
	maxImage int64
	now      func() time.Time
}

func NewUserService(repo domain.UserRepository, hasher domain.PasswordHasher, images domain.ImageStore, l *zap.Logger, opts Options) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	// 只含空白的值视为未填写
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		images:   images,
		log:      l.Named("user_service"),
		validate: v,
		maxImage: opts.MaxImageBytes,
		now:      opts.Now,
	}
}

func (s *UserService) Create(ctx context.Context, in user.CreateInput) (*user.DTO, error) {
	in = in.Normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.checkImage(in.Image); err != nil {
		return nil, err
	}

	u := user.NewRecord(in)
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", domain.ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	// 图片先落盘，再写记录
	if in.Image.Present() {
		ref, err := s.images.Save(ctx, in.Image.Data, in.Image.Filename)
		if err != nil {
			return nil, err
		}
		u.ProfilePicture = &ref
	}

	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("id", u.ID), zap.Bool("with_image", u.ProfilePicture != nil))
	out := user.ToDTO(u)
	return &out, nil
}

func (s *UserService) List(ctx context.Context, pr domain.PageRequest) (domain.Page[user.DTO], error) {
	pr = pr.Normalize()
	us, total, err := s.repo.List(ctx, pr)
	if err != nil {
		return domain.Page[user.DTO]{}, err
	}
	return domain.Page[user.DTO]{
		Items: user.ToDTOs(us),
		Total: total,
		Page:  pr.Page,
		Size:  pr.Size,
		Sort:  pr.SortString(),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*user.DTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := user.ToDTO(*u)
	return &out, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*user.DTO, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: email must be a valid address", domain.ErrValidation)
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	out := user.ToDTO(*u)
	return &out, nil
}

// Update 全量覆盖可变字段；密码不在此处修改
func (s *UserService) Update(ctx context.Context, id string, in user.UpdateInput) (*user.DTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.Normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.checkImage(in.Image); err != nil {
		return nil, err
	}

	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	u.PhoneNumber = in.PhoneNumber
	if in.Image.Present() {
		// 旧文件保留，不做清理
		ref, err := s.images.Save(ctx, in.Image.Data, in.Image.Filename)
		if err != nil {
			return nil, err
		}
		u.ProfilePicture = &ref
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("id", u.ID))
	out := user.ToDTO(*u)
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("id", id))
	return nil
}

// ExportAll 全量取数，按 id 升序
func (s *UserService) ExportAll(ctx context.Context) ([]user.DTO, error) {
	us, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return user.ToDTOs(us), nil
}

func (s *UserService) ProfileImage(ctx context.Context, ref string) ([]byte, error) {
	return s.images.Open(ctx, ref)
}

func (s *UserService) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func (s *UserService) checkImage(img *user.ImageUpload) error {
	if !img.Present() {
		return nil
	}
	if int64(len(img.Data)) > s.maxImage {
		return fmt.Errorf("%w: profile image exceeds %d bytes", domain.ErrValidation, s.maxImage)
	}
	// 按内容判断类型，不信任文件名
	if m := mimetype.Detect(img.Data); !slices.ContainsFunc(allowedImageTypes, m.Is) {
		return fmt.Errorf("%w: unsupported profile image type %s", domain.ErrValidation, m.String())
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
