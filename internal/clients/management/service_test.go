package management

import (
	"context"
	"errors"
	"testing"
	"time"

	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	clients  map[uuid.UUID]repository.Client
	comments map[uuid.UUID][]repository.Comment
	sales    map[uuid.UUID][]repository.Sale

	lastList repository.ListClientsParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clients:  make(map[uuid.UUID]repository.Client),
		comments: make(map[uuid.UUID][]repository.Comment),
		sales:    make(map[uuid.UUID][]repository.Sale),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetByDedupKey(_ context.Context, key string) (repository.Client, error) {
	for _, c := range f.clients {
		if c.NormalizedContact == key {
			return c, nil
		}
	}
	return repository.Client{}, repository.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, params repository.ListClientsParams) ([]repository.Client, error) {
	f.lastList = params
	out := make([]repository.Client, 0, len(f.clients))
	for _, c := range f.clients {
		if params.OwnerID != nil && (c.UserID == nil || *c.UserID != *params.OwnerID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) UpdateFields(_ context.Context, id uuid.UUID, params repository.UpdateClientParams) (repository.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.TagIDsSet {
		c.TagIDs = params.TagIDs
	}
	f.clients[id] = c
	return c, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeRepo) ListComments(_ context.Context, clientID uuid.UUID) ([]repository.Comment, error) {
	return f.comments[clientID], nil
}

func (f *fakeRepo) ListSalesByClient(_ context.Context, clientID uuid.UUID) ([]repository.Sale, error) {
	return f.sales[clientID], nil
}

func seedClient(f *fakeRepo, owner *uuid.UUID) repository.Client {
	c := repository.Client{
		ID:                uuid.New(),
		Name:              "Dona Rosa",
		NormalizedContact: "11988887777",
		Status:            "New",
		UserID:            owner,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	f.clients[c.ID] = c
	return c
}

func TestList_MineScopesToRequester(t *testing.T) {
	repo := newFakeRepo()
	me := uuid.New()
	other := uuid.New()
	seedClient(repo, &me)
	seedClient(repo, &other)

	svc := New(repo)

	out, err := svc.List(context.Background(), transport.ListClientsRequest{Mine: true}, me)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d clients, want 1", len(out))
	}
	if out[0].OwnerID == nil || *out[0].OwnerID != me {
		t.Fatalf("client owned by %v, want %v", out[0].OwnerID, me)
	}
}

func TestList_ClampsPageSize(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	if _, err := svc.List(context.Background(), transport.ListClientsRequest{Limit: 10000}, uuid.New()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastList.Limit != defaultPageSize {
		t.Fatalf("limit = %d, want %d", repo.lastList.Limit, defaultPageSize)
	}

	if _, err := svc.List(context.Background(), transport.ListClientsRequest{Offset: -5}, uuid.New()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastList.Offset != 0 {
		t.Fatalf("offset = %d, want 0", repo.lastList.Offset)
	}
}

func TestGetDetail_IncludesTimelineAndSales(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	client := seedClient(repo, &owner)
	repo.comments[client.ID] = []repository.Comment{
		{ID: uuid.New(), ClientID: client.ID, AuthorName: "Maria", Kind: repository.CommentKindSystem, Body: "lead criado"},
	}
	repo.sales[client.ID] = []repository.Sale{
		{ID: uuid.New(), ClientID: client.ID, UserID: owner, ValueCents: 15050, SaleDate: time.Now()},
	}

	svc := New(repo)

	detail, err := svc.GetDetail(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if len(detail.Comments) != 1 || len(detail.Sales) != 1 {
		t.Fatalf("detail has %d comments and %d sales, want 1 and 1", len(detail.Comments), len(detail.Sales))
	}
	if detail.Sales[0].ValueCents != 15050 {
		t.Fatalf("sale value = %d, want 15050", detail.Sales[0].ValueCents)
	}
}

func TestGetDetail_UnknownClientIsNotFound(t *testing.T) {
	svc := New(newFakeRepo())

	_, err := svc.GetDetail(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdate_ReplacesTagsOnlyWhenProvided(t *testing.T) {
	repo := newFakeRepo()
	owner := uuid.New()
	client := seedClient(repo, &owner)
	client.TagIDs = []uuid.UUID{uuid.New()}
	repo.clients[client.ID] = client

	svc := New(repo)

	name := "Dona Rosa Silva"
	out, err := svc.Update(context.Background(), client.ID, transport.UpdateClientRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.Name != name {
		t.Fatalf("name = %q, want %q", out.Name, name)
	}
	if len(out.TagIDs) != 1 {
		t.Fatalf("tags replaced without being provided: %v", out.TagIDs)
	}

	empty := []uuid.UUID{}
	out, err = svc.Update(context.Background(), client.ID, transport.UpdateClientRequest{TagIDs: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(out.TagIDs) != 0 {
		t.Fatalf("tags = %v, want cleared", out.TagIDs)
	}
}

func TestDelete_UnknownClientIsNotFound(t *testing.T) {
	svc := New(newFakeRepo())

	err := svc.Delete(context.Background(), uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
