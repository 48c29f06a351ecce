package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"salescrm_backend/internal/clients/domain"
	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/events"

	"github.com/google/uuid"
)

type fakeRepo struct {
	clients  map[uuid.UUID]repository.Client
	sales    map[uuid.UUID]repository.Sale
	comments []repository.CommentParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clients: make(map[uuid.UUID]repository.Client),
		sales:   make(map[uuid.UUID]repository.Sale),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (repository.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	f.clients[id] = c
	return c, nil
}

func (f *fakeRepo) CloseWithSale(_ context.Context, params repository.CloseSaleParams) (repository.Client, repository.Sale, error) {
	c, ok := f.clients[params.ClientID]
	if !ok {
		return repository.Client{}, repository.Sale{}, repository.ErrNotFound
	}
	if c.Status == domain.StatusClosed {
		c.UpdatedAt = time.Now()
		f.clients[params.ClientID] = c
		return c, repository.Sale{}, repository.ErrAlreadyClosed
	}

	sale := repository.Sale{
		ID:         uuid.New(),
		ClientID:   params.ClientID,
		UserID:     params.SellerID,
		ValueCents: params.ValueCents,
		SaleDate:   time.Now(),
	}
	f.sales[sale.ID] = sale
	f.comments = append(f.comments, params.Comment)

	c.Status = domain.StatusClosed
	c.UpdatedAt = time.Now()
	f.clients[params.ClientID] = c
	return c, sale, nil
}

func (f *fakeRepo) CancelSale(_ context.Context, saleID, requesterID uuid.UUID, comment repository.CommentParams) (repository.Client, error) {
	sale, ok := f.sales[saleID]
	if !ok {
		return repository.Client{}, repository.ErrSaleNotFound
	}
	if sale.UserID != requesterID {
		return repository.Client{}, repository.ErrSaleNotOwned
	}
	delete(f.sales, saleID)

	c := f.clients[sale.ClientID]
	c.Status = domain.StatusPostSale
	c.UpdatedAt = time.Now()
	f.clients[sale.ClientID] = c
	f.comments = append(f.comments, comment)
	return c, nil
}

type fakeUsers struct {
	names map[uuid.UUID]string
}

func (f *fakeUsers) GetName(_ context.Context, id uuid.UUID) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", errors.New("user not found")
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event) {}
func (nopBus) PublishSync(context.Context, events.Event) error {
	return nil
}
func (nopBus) Subscribe(string, events.Handler) {}

func seed(repo *fakeRepo, status string, owner uuid.UUID) uuid.UUID {
	id := uuid.New()
	repo.clients[id] = repository.Client{
		ID:     id,
		Name:   "Acme",
		Status: status,
		UserID: &owner,
	}
	return id
}

func intPtr(v int64) *int64 { return &v }

func TestUpdateStatus_CloseRequiresPositiveValue(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNegotiating, seller)

	for _, value := range []*int64{nil, intPtr(0), intPtr(-500)} {
		_, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
			Status:         domain.StatusClosed,
			SaleValueCents: value,
		}, seller)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("value %v: expected validation error, got %v", value, err)
		}
	}

	if repo.clients[clientID].Status != domain.StatusNegotiating {
		t.Fatal("status must not change on rejected close")
	}
	if len(repo.sales) != 0 {
		t.Fatal("no sale may be created on rejected close")
	}
}

func TestUpdateStatus_CloseCreatesSaleWithFormattedComment(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNegotiating, seller)

	result, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status:         domain.StatusClosed,
		SaleValueCents: intPtr(15050),
	}, seller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Client.Status != domain.StatusClosed {
		t.Fatalf("expected Closed, got %s", result.Client.Status)
	}
	if result.Sale == nil || result.Sale.ValueCents != 15050 {
		t.Fatalf("expected sale of 15050 cents, got %+v", result.Sale)
	}
	if len(repo.sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(repo.sales))
	}
	if len(repo.comments) != 1 || !strings.Contains(repo.comments[0].Body, "R$ 150,50") {
		t.Fatalf("expected comment with formatted currency, got %+v", repo.comments)
	}
}

func TestUpdateStatus_RecloseDoesNotDuplicateSale(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNegotiating, seller)

	if _, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status:         domain.StatusClosed,
		SaleValueCents: intPtr(10000),
	}, seller); err != nil {
		t.Fatalf("first close failed: %v", err)
	}

	result, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status: domain.StatusClosed,
	}, seller)
	if err != nil {
		t.Fatalf("re-close failed: %v", err)
	}
	if result.Sale != nil {
		t.Fatal("re-close must not return a new sale")
	}
	if len(repo.sales) != 1 {
		t.Fatalf("expected one sale after re-close, got %d", len(repo.sales))
	}
}

func TestUpdateStatus_PlainTransitionHasNoSideRecords(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNew, seller)

	result, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status: domain.StatusNegotiating,
	}, seller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Client.Status != domain.StatusNegotiating {
		t.Fatalf("expected Negotiating, got %s", result.Client.Status)
	}
	if len(repo.sales) != 0 || len(repo.comments) != 0 {
		t.Fatal("plain transitions must not create side records")
	}
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNew, seller)

	_, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{Status: "Archived"}, seller)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelSale_RevertsClientToPostSale(t *testing.T) {
	seller := uuid.New()
	repo := newFakeRepo()
	svc := New(repo, &fakeUsers{names: map[uuid.UUID]string{seller: "Maria"}}, nopBus{})
	clientID := seed(repo, domain.StatusNegotiating, seller)

	result, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status:         domain.StatusClosed,
		SaleValueCents: intPtr(20000),
	}, seller)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}

	client, err := svc.CancelSale(context.Background(), result.Sale.ID, seller)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if client.Status != domain.StatusPostSale {
		t.Fatalf("expected Post-sale, got %s", client.Status)
	}
	if len(repo.sales) != 0 {
		t.Fatal("sale must be deleted on cancel")
	}
}

func TestCancelSale_OwnershipCheckedAgainstSaleSeller(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao"}}
	svc := New(repo, users, nopBus{})
	clientID := seed(repo, domain.StatusNegotiating, sellerA)

	result, err := svc.UpdateStatus(context.Background(), clientID, transport.UpdateStatusRequest{
		Status:         domain.StatusClosed,
		SaleValueCents: intPtr(20000),
	}, sellerA)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// The client may have been transferred to B since, but the sale still
	// belongs to A.
	if _, err := svc.CancelSale(context.Background(), result.Sale.ID, sellerB); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.sales) != 1 {
		t.Fatal("sale must remain when cancel is rejected")
	}

	if _, err := svc.CancelSale(context.Background(), uuid.New(), sellerA); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
