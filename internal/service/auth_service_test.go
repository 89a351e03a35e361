package service

import (
	"errors"
	"testing"
	"time"

	"habittracker/pkg/util"
)

func TestAuthServiceLogin(t *testing.T) {
	hash, err := util.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewAuthService(hash, "signing-key", time.Hour)

	if _, err := svc.Login("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password: err = %v", err)
	}
	token, err := svc.Login("s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	sub, err := svc.Verify(token)
	if err != nil || sub != "owner" {
		t.Errorf("Verify = %q, %v", sub, err)
	}

	disabled := NewAuthService(hash, "", time.Hour)
	if disabled.Enabled() {
		t.Error("service without secret should be disabled")
	}
	if _, err := disabled.Login("s3cret"); !errors.Is(err, ErrAuthDisabled) {
		t.Errorf("disabled login: err = %v", err)
	}
}
