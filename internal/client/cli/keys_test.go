package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/prestobr/authd/internal/client/api"
)

func TestNewKey(t *testing.T) {
	f := &fakeAPI{createOut: &api.ApiKey{ID: 5, Description: "ci", Active: true, Key: "cafebabe"}}
	a := newTestApp(f)
	stubInput(t, []string{"ci", "ADMIN, FISCAL_READ"}, "")

	if err := a.NewKey(context.Background()); err != nil {
		t.Fatalf("NewKey error: %v", err)
	}
}

func TestNewKey_ServiceError(t *testing.T) {
	f := &fakeAPI{createErr: api.ErrBadRequest}
	a := newTestApp(f)
	stubInput(t, []string{"ci", "GHOST"}, "")

	if err := a.NewKey(context.Background()); !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestListKeys(t *testing.T) {
	f := &fakeAPI{listOut: []api.ApiKey{
		{ID: 1, Description: "ci", Active: true, Roles: []string{"ADMIN"}},
		{ID: 2, Description: "old", Active: false},
	}}
	a := newTestApp(f)

	if err := a.ListKeys(context.Background()); err != nil {
		t.Fatalf("ListKeys error: %v", err)
	}
}

func TestRevokeKey(t *testing.T) {
	f := &fakeAPI{}
	a := newTestApp(f)
	stubInput(t, []string{"42"}, "")

	if err := a.RevokeKey(context.Background()); err != nil {
		t.Fatalf("RevokeKey error: %v", err)
	}
	if f.revokedID != 42 {
		t.Fatalf("expected revoke of key 42, got %d", f.revokedID)
	}
}

func TestRevokeKey_InvalidID(t *testing.T) {
	f := &fakeAPI{}
	a := newTestApp(f)
	stubInput(t, []string{"not-a-number"}, "")

	if err := a.RevokeKey(context.Background()); err == nil {
		t.Fatal("expected an error for a non-numeric ID")
	}
	if f.revokedID != 0 {
		t.Fatalf("no revoke call expected, got %d", f.revokedID)
	}
}
