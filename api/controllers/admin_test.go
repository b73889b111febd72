package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	adminsvc "github.com/storelane/storelane-backend/internal/admin"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/pagination"
	"github.com/storelane/storelane-backend/pkg/types"
)

type stubAdminService struct {
	created json.RawMessage
	entity  string
}

func (s *stubAdminService) Entities() []string { return []string{"categories", "users"} }

func (s *stubAdminService) Fields(entity string) ([]adminsvc.FieldInfo, error) {
	if entity != "users" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown admin entity")
	}
	return []adminsvc.FieldInfo{{Name: "email", Type: "string", Required: true, Mutable: true}}, nil
}

func (s *stubAdminService) List(_ context.Context, entity string, page pagination.Params) (any, *types.PageMeta, error) {
	s.entity = entity
	return []string{}, page.Meta(0), nil
}

func (s *stubAdminService) Get(_ context.Context, _ string, _ uuid.UUID) (any, error) {
	return map[string]string{"ok": "yes"}, nil
}

func (s *stubAdminService) Create(_ context.Context, entity string, payload json.RawMessage) (any, error) {
	s.entity = entity
	s.created = payload
	return map[string]string{"created": "yes"}, nil
}

func (s *stubAdminService) Update(_ context.Context, _ string, _ uuid.UUID, _ json.RawMessage) (any, error) {
	return map[string]string{"updated": "yes"}, nil
}

func (s *stubAdminService) Delete(_ context.Context, _ string, _ uuid.UUID) error { return nil }

func adminRouter(svc adminsvc.Service) *chi.Mux {
	logg := testLogger()
	router := chi.NewRouter()
	router.Get("/api/admin/{entity}", AdminList(svc, logg))
	router.Get("/api/admin/{entity}/fields", AdminFields(svc, logg))
	router.Post("/api/admin/{entity}", AdminCreate(svc, logg))
	return router
}

func TestAdminFieldsUnknownEntity(t *testing.T) {
	router := adminRouter(&stubAdminService{})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/fields", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAdminListPassesEntity(t *testing.T) {
	stub := &stubAdminService{}
	router := adminRouter(stub)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.entity != "users" {
		t.Fatalf("entity = %q", stub.entity)
	}
}

func TestAdminCreateRejectsInvalidJSON(t *testing.T) {
	stub := &stubAdminService{}
	router := adminRouter(stub)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.created != nil {
		t.Fatal("service must not receive invalid json")
	}
}

func TestAdminCreatePassesRawPayload(t *testing.T) {
	stub := &stubAdminService{}
	router := adminRouter(stub)
	payload := []byte(`{"email":"a@b.c"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(stub.created, payload) {
		t.Fatalf("payload = %s", stub.created)
	}
}
