package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	byKey     map[string]repository.Client
	comments  []repository.CommentParams
	transfers int
	creates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byKey: make(map[string]repository.Client)}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Client, error) {
	for _, c := range f.byKey {
		if c.ID == id {
			return c, nil
		}
	}
	return repository.Client{}, repository.ErrNotFound
}

func (f *fakeRepo) GetByDedupKey(_ context.Context, key string) (repository.Client, error) {
	c, ok := f.byKey[key]
	if !ok {
		return repository.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListClientsParams) ([]repository.Client, error) {
	return nil, nil
}

func (f *fakeRepo) CreateWithComment(_ context.Context, params repository.CreateClientParams, comment repository.CommentParams) (repository.Client, error) {
	now := time.Now()
	client := repository.Client{
		ID:                uuid.New(),
		Name:              params.Name,
		City:              params.City,
		NormalizedContact: params.NormalizedContact,
		Status:            "New",
		DesiredProduct:    params.DesiredProduct,
		UserID:            &params.OwnerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	f.byKey[params.NormalizedContact] = client
	f.comments = append(f.comments, comment)
	f.creates++
	return client, nil
}

func (f *fakeRepo) TransferOwnership(_ context.Context, params repository.TransferParams) (repository.Client, error) {
	for key, c := range f.byKey {
		if c.ID != params.ClientID {
			continue
		}
		sameOwner := c.UserID == nil && params.FromOwnerID == nil ||
			c.UserID != nil && params.FromOwnerID != nil && *c.UserID == *params.FromOwnerID
		if !sameOwner || c.UpdatedAt.After(params.StaleBefore) {
			return repository.Client{}, repository.ErrOwnershipChanged
		}
		owner := params.NewOwnerID
		c.UserID = &owner
		c.UpdatedAt = time.Now()
		f.byKey[key] = c
		f.comments = append(f.comments, params.Comment)
		f.transfers++
		return c, nil
	}
	return repository.Client{}, repository.ErrNotFound
}

func (f *fakeRepo) UpdateFields(_ context.Context, _ uuid.UUID, _ repository.UpdateClientParams) (repository.Client, error) {
	return repository.Client{}, errors.New("not implemented")
}

func (f *fakeRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return errors.New("not implemented")
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

func newService(repo *fakeRepo, users *fakeUsers, now time.Time) *Service {
	svc := New(repo, users, nopBus{}, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCapture_NewContactCreatesClientWithComment(t *testing.T) {
	sellerA := uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria"}}
	svc := newService(repo, users, time.Now())

	result, err := svc.Capture(context.Background(), transport.CaptureClientRequest{
		Name:    "Acme Ltd",
		Contact: "(11) 98765-4321",
	}, sellerA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != transport.OutcomeCreated {
		t.Fatalf("expected created, got %s", result.Outcome)
	}
	if result.Client.OwnerID == nil || *result.Client.OwnerID != sellerA {
		t.Fatal("client should be owned by the submitting seller")
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", repo.creates)
	}
	if len(repo.comments) != 1 {
		t.Fatalf("expected exactly one comment, got %d", len(repo.comments))
	}
	if repo.comments[0].Kind != repository.CommentKindSystem || !strings.Contains(repo.comments[0].Body, "Maria") {
		t.Fatalf("unexpected comment %+v", repo.comments[0])
	}
	if result.Client.City != nil || result.Client.DesiredProduct != nil {
		t.Fatal("omitted optional fields must stay null")
	}
}

func TestCapture_SameOwnerRejected(t *testing.T) {
	sellerA := uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria"}}
	svc := newService(repo, users, time.Now())

	if _, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerA); err != nil {
		t.Fatalf("seed capture failed: %v", err)
	}

	_, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme again", Contact: "(11) 98765 4321"}, sellerA)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.creates != 1 || repo.transfers != 0 {
		t.Fatal("rejection must not write")
	}
}

func TestCapture_ActiveLeadOfOtherSellerRejected(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao"}}
	now := time.Now()
	repo.byKey["5511987654321"] = repository.Client{
		ID:                uuid.New(),
		Name:              "Acme",
		NormalizedContact: "5511987654321",
		Status:            "Negotiating",
		UserID:            &sellerA,
		UpdatedAt:         now.Add(-24 * time.Hour),
	}
	svc := newService(repo, users, now)

	_, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerB)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "Maria") {
		t.Fatalf("conflict should name the current owner, got %q", err.Error())
	}
	if repo.transfers != 0 || repo.creates != 0 {
		t.Fatal("rejection must not write")
	}
}

func TestCapture_StaleLeadTransfersThenProtects(t *testing.T) {
	sellerA, sellerB, sellerC := uuid.New(), uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao", sellerC: "Ana"}}
	now := time.Now()
	repo.byKey["5511987654321"] = repository.Client{
		ID:                uuid.New(),
		Name:              "Acme",
		NormalizedContact: "5511987654321",
		Status:            "New",
		UserID:            &sellerA,
		UpdatedAt:         now.Add(-31 * 24 * time.Hour),
	}
	svc := newService(repo, users, now)

	result, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != transport.OutcomeTransferred {
		t.Fatalf("expected transferred, got %s", result.Outcome)
	}
	if result.Client.OwnerID == nil || *result.Client.OwnerID != sellerB {
		t.Fatal("ownership should move to the submitting seller")
	}
	if repo.transfers != 1 || len(repo.comments) != 1 {
		t.Fatalf("expected one transfer and one comment, got %d/%d", repo.transfers, len(repo.comments))
	}
	if !strings.Contains(repo.comments[0].Body, "Joao") {
		t.Fatalf("transfer comment should name the new owner, got %q", repo.comments[0].Body)
	}

	// The lead was just transferred and touched; a third seller is rejected.
	_, err = svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerC)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict after transfer, got %v", err)
	}
	if repo.transfers != 1 {
		t.Fatal("no second transfer may happen")
	}
}

func TestCapture_ShortContactRejected(t *testing.T) {
	sellerA := uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria"}}
	svc := newService(repo, users, time.Now())

	_, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "123-45"}, sellerA)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckAvailability_MirrorsWritePath(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao"}}
	now := time.Now()
	svc := newService(repo, users, now)
	ctx := context.Background()

	res, err := svc.CheckAvailability(ctx, "11987654321", sellerB)
	if err != nil || res.Status != transport.AvailabilityAvailable {
		t.Fatalf("expected available, got %+v err=%v", res, err)
	}

	repo.byKey["5511987654321"] = repository.Client{
		ID:                uuid.New(),
		NormalizedContact: "5511987654321",
		UserID:            &sellerA,
		UpdatedAt:         now.Add(-24 * time.Hour),
	}

	res, err = svc.CheckAvailability(ctx, "11987654321", sellerA)
	if err != nil || res.Status != transport.AvailabilityAlreadyYours {
		t.Fatalf("expected already-yours, got %+v err=%v", res, err)
	}

	res, err = svc.CheckAvailability(ctx, "11987654321", sellerB)
	if err != nil || res.Status != transport.AvailabilityBlocked {
		t.Fatalf("expected blocked, got %+v err=%v", res, err)
	}
	if res.OwnerName != "Maria" {
		t.Fatalf("blocked check should name the owner, got %q", res.OwnerName)
	}

	stale := repo.byKey["5511987654321"]
	stale.UpdatedAt = now.Add(-31 * 24 * time.Hour)
	repo.byKey["5511987654321"] = stale

	res, err = svc.CheckAvailability(ctx, "11987654321", sellerB)
	if err != nil || res.Status != transport.AvailabilityTransferable {
		t.Fatalf("expected transferable, got %+v err=%v", res, err)
	}
}

func TestImport_RowsResolveIndividually(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao"}}
	now := time.Now()
	repo.byKey["5511911112222"] = repository.Client{
		ID:                uuid.New(),
		Name:              "Blocked Co",
		NormalizedContact: "5511911112222",
		UserID:            &sellerA,
		UpdatedAt:         now.Add(-time.Hour),
	}
	svc := newService(repo, users, now)

	report, err := svc.Import(context.Background(), []transport.ImportRow{
		{Name: "Fresh Co", Contact: "11933334444"},
		{Name: "Blocked Co", Contact: "11911112222"},
		{Name: "Bad Row", Contact: "123"},
	}, sellerB, "leads.csv", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Created != 1 || report.Transferred != 0 || report.Skipped != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 row results, got %d", len(report.Rows))
	}
}

func TestParseImportCSV(t *testing.T) {
	rows, err := ParseImportCSV([]byte("name,contact,city\nAcme,11987654321,Sao Paulo\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Acme" || rows[0].City != "Sao Paulo" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if _, err := ParseImportCSV([]byte("foo,bar\n1,2\n")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing columns, got %v", err)
	}
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestCapture_SpellingVariantsResolveToSameLead(t *testing.T) {
	sellerA := uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria"}}
	svc := newService(repo, users, time.Now())
	ctx := context.Background()

	if _, err := svc.Capture(ctx, transport.CaptureClientRequest{Name: "Acme", Contact: "+55 11 98765-4321"}, sellerA); err != nil {
		t.Fatalf("seed capture failed: %v", err)
	}

	// The national spelling of the same number must hit the same lead.
	_, err := svc.Capture(ctx, transport.CaptureClientRequest{Name: "Acme", Contact: "(11) 98765-4321"}, sellerA)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("spelling variant created a second lead, creates=%d", repo.creates)
	}
}

func TestCapture_UnownedClaimPublishesNoTransferEvent(t *testing.T) {
	sellerB := uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerB: "Joao"}}
	now := time.Now()
	repo.byKey["5511987654321"] = repository.Client{
		ID:                uuid.New(),
		Name:              "Acme",
		NormalizedContact: "5511987654321",
		Status:            "New",
		UpdatedAt:         now.Add(-time.Hour),
	}
	bus := &recordingBus{}
	svc := New(repo, users, bus, nil)
	svc.now = func() time.Time { return now }

	result, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != transport.OutcomeTransferred {
		t.Fatalf("expected transferred, got %s", result.Outcome)
	}
	for _, e := range bus.published {
		if _, ok := e.(events.ClientTransferred); ok {
			t.Fatal("claiming an unowned lead must not publish a transfer event")
		}
	}
}

func TestCapture_StaleTransferPublishesTransferEvent(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	repo := newFakeRepo()
	users := &fakeUsers{names: map[uuid.UUID]string{sellerA: "Maria", sellerB: "Joao"}}
	now := time.Now()
	repo.byKey["5511987654321"] = repository.Client{
		ID:                uuid.New(),
		Name:              "Acme",
		NormalizedContact: "5511987654321",
		Status:            "New",
		UserID:            &sellerA,
		UpdatedAt:         now.Add(-31 * 24 * time.Hour),
	}
	bus := &recordingBus{}
	svc := New(repo, users, bus, nil)
	svc.now = func() time.Time { return now }

	if _, err := svc.Capture(context.Background(), transport.CaptureClientRequest{Name: "Acme", Contact: "11987654321"}, sellerB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var transferred *events.ClientTransferred
	for _, e := range bus.published {
		if ev, ok := e.(events.ClientTransferred); ok {
			transferred = &ev
		}
	}
	if transferred == nil {
		t.Fatal("stale transfer must publish a transfer event")
	}
	if transferred.PreviousOwnerID == nil || *transferred.PreviousOwnerID != sellerA {
		t.Fatalf("previous owner = %v, want %v", transferred.PreviousOwnerID, sellerA)
	}
}
