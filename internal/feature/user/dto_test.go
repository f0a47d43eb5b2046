package user

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"booking-users/internal/domain"
)

func TestNewRecord_DropsPassword(t *testing.T) {
	u := NewRecord(CreateInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "plain", PhoneNumber: "555-0100",
	})
	if u.PasswordHash != "" {
		t.Fatal("mapper must not carry the plaintext into the record")
	}
	if u.ID != "" || !u.CreatedAt.IsZero() {
		t.Fatal("mapper must not assign identity or timestamps")
	}
	if u.Email != "ada@example.com" || u.PhoneNumber != "555-0100" {
		t.Fatalf("unexpected record: %+v", u)
	}
}

func TestToDTO_OmitsHash(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pic := "ada_1.png"
	d := ToDTO(domain.User{
		ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		PhoneNumber: "555", PasswordHash: "$2a$10$secret", ProfilePicture: &pic,
		CreatedAt: now, UpdatedAt: now,
	})
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(strings.ToLower(string(b)), "password") {
		t.Fatalf("dto leaked credential data: %s", b)
	}
	if d.ProfilePicture == nil || *d.ProfilePicture != pic {
		t.Fatal("expected profile picture to be mapped")
	}
}

func TestModelRoundTrip(t *testing.T) {
	u := &domain.User{ID: "u1", FirstName: "A", LastName: "B", Email: "a@b.c", PasswordHash: "h"}
	back := ModelFromDomain(u).ToDomain()
	if *back != *u {
		t.Fatalf("expected %+v, got %+v", u, back)
	}
}

func TestImageUpload_Present(t *testing.T) {
	var nilImg *ImageUpload
	if nilImg.Present() || (&ImageUpload{Filename: "a.png"}).Present() {
		t.Fatal("expected empty uploads to be absent")
	}
	if !(&ImageUpload{Filename: "a.png", Data: []byte{1}}).Present() {
		t.Fatal("expected upload with data to be present")
	}
}

func TestNormalize_TrimsProfileNotPassword(t *testing.T) {
	in := CreateInput{FirstName: " Ada ", LastName: "\tLovelace", Email: " ada@example.com ", Password: " pw ", PhoneNumber: " 1 "}.Normalize()
	if in.FirstName != "Ada" || in.LastName != "Lovelace" || in.Email != "ada@example.com" || in.PhoneNumber != "1" {
		t.Fatalf("not trimmed: %+v", in)
	}
	if in.Password != " pw " {
		t.Fatalf("password altered: %q", in.Password)
	}
	up := UpdateInput{FirstName: "  ", Email: " b@example.com"}.Normalize()
	if up.FirstName != "" || up.Email != "b@example.com" {
		t.Fatalf("update not trimmed: %+v", up)
	}
}
