package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Ramprakash852/AI-storyteller/models"
)

func registerReq() *models.RegisterRequest {
	return &models.RegisterRequest{
		ParentEmail: "Parent@Example.com",
		ParentName:  "Pat",
		ChildName:   "Sam",
		ChildAge:    7,
		Password:    "sufficiently-long",
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := NewUserService(newMemUserStore(), 4)

	user, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatal(err)
	}
	if user.ParentEmail != "parent@example.com" {
		t.Errorf("email not lowercased: %q", user.ParentEmail)
	}
	if user.PasswordHash == "sufficiently-long" {
		t.Error("password stored in plaintext")
	}
	if user.ID.IsZero() {
		t.Error("user ID not set")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewUserService(newMemUserStore(), 4)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatal(err)
	}
	req := registerReq()
	req.ParentEmail = "PARENT@example.com"
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewUserService(newMemUserStore(), 4)
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatal(err)
	}

	user, err := svc.Authenticate(context.Background(), &models.LoginRequest{
		ParentEmail: " parent@example.com ",
		Password:    "sufficiently-long",
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.ChildName != "Sam" {
		t.Errorf("unexpected user %+v", user)
	}

	_, err = svc.Authenticate(context.Background(), &models.LoginRequest{
		ParentEmail: "parent@example.com",
		Password:    "wrong-password",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for bad password, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), &models.LoginRequest{
		ParentEmail: "nobody@example.com",
		Password:    "sufficiently-long",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown email, got %v", err)
	}
}
