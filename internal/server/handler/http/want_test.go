package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/service"
)

// fakeWants implements WantService with overridable behavior per test.
type fakeWants struct {
	addWantFn     func(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error)
	wantersForFn  func(ctx context.Context, itemID int64) ([]models.User, error)
	itemsWantedFn func(ctx context.Context, userID int64) ([]models.Item, error)
	receivedForFn func(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error)
	confirmSoldFn func(ctx context.Context, itemID, buyerID int64) error
}

func (f *fakeWants) AddWant(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error) {
	return f.addWantFn(ctx, itemID, userID, offerPrice)
}
func (f *fakeWants) WantersFor(ctx context.Context, itemID int64) ([]models.User, error) {
	return f.wantersForFn(ctx, itemID)
}
func (f *fakeWants) ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error) {
	return f.itemsWantedFn(ctx, userID)
}
func (f *fakeWants) ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error) {
	return f.receivedForFn(ctx, ownerID)
}
func (f *fakeWants) ConfirmSold(ctx context.Context, itemID, buyerID int64) error {
	return f.confirmSoldFn(ctx, itemID, buyerID)
}

func findItem(item *models.Item) *fakeCatalog {
	return &fakeCatalog{
		findByIDFn: func(ctx context.Context, id int64) (*models.Item, error) { return item, nil },
	}
}

func TestWantHandler_Add_BoundaryChecks(t *testing.T) {
	tests := []struct {
		name         string
		caller       *models.User
		item         *models.Item
		body         string
		expectedCode int
	}{
		{
			name:         "missing item",
			caller:       bob,
			item:         nil,
			body:         `{"offer_price":0}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "self want rejected",
			caller:       alice,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: true},
			body:         `{"offer_price":0}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "sold item rejected",
			caller:       bob,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemSold, CanBargain: true},
			body:         `{"offer_price":0}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "negative offer rejected",
			caller:       bob,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: true},
			body:         `{"offer_price":-3}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "offer on fixed-price item rejected",
			caller:       bob,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: false},
			body:         `{"offer_price":15}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "listed price accepted on fixed-price item",
			caller:       bob,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: false},
			body:         `{"offer_price":0}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "bargain offer accepted",
			caller:       bob,
			item:         &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: true},
			body:         `{"offer_price":15}`,
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wants := &fakeWants{
				addWantFn: func(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error) {
					return true, nil
				},
			}
			h := &WantHandler{Wants: wants, Catalog: findItem(tt.item)}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/items/7/want", bytes.NewBufferString(tt.body))
			req = asUser(withURLParam(req, "id", "7"), tt.caller)
			h.Add(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWantHandler_Add_DuplicateReported(t *testing.T) {
	item := &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive, CanBargain: true}
	wants := &fakeWants{
		addWantFn: func(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error) {
			return false, nil
		},
	}
	h := &WantHandler{Wants: wants, Catalog: findItem(item)}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/items/7/want", bytes.NewBufferString(`{"offer_price":0}`))
	req = asUser(withURLParam(req, "id", "7"), bob)
	h.Add(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate intent, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"added":false`)) {
		t.Errorf("expected added=false, got %s", rec.Body.String())
	}
}

func TestWantHandler_Wanters_OwnerOrAdmin(t *testing.T) {
	item := &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive}
	wants := &fakeWants{
		wantersForFn: func(ctx context.Context, itemID int64) ([]models.User, error) {
			return []models.User{*bob}, nil
		},
	}

	tests := []struct {
		name         string
		caller       *models.User
		expectedCode int
	}{
		{"owner can list wanters", alice, http.StatusOK},
		{"admin can list wanters", admin, http.StatusOK},
		{"stranger rejected", bob, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &WantHandler{Wants: wants, Catalog: findItem(item)}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/items/7/wanters", nil)
			req = asUser(withURLParam(req, "id", "7"), tt.caller)
			h.Wanters(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestWantHandler_ConfirmSold(t *testing.T) {
	item := &models.Item{ID: 7, OwnerID: alice.ID, Status: models.ItemActive}

	tests := []struct {
		name         string
		caller       *models.User
		confirmErr   error
		expectedCode int
	}{
		{"owner confirms", alice, nil, http.StatusOK},
		{"non-owner rejected", bob, nil, http.StatusForbidden},
		{"admin is not the owner", admin, nil, http.StatusForbidden},
		{"already sold", alice, service.ErrAlreadySold, http.StatusConflict},
		{"buyer without intent", alice, service.ErrNotAWanter, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wants := &fakeWants{
				confirmSoldFn: func(ctx context.Context, itemID, buyerID int64) error {
					return tt.confirmErr
				},
			}
			h := &WantHandler{Wants: wants, Catalog: findItem(item)}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/items/7/sold", bytes.NewBufferString(`{"buyer_id":3}`))
			req = asUser(withURLParam(req, "id", "7"), tt.caller)
			h.ConfirmSold(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

// marketState is a stateful in-memory backend used by the scenario test
// below. It implements CatalogService and WantService over a single item.
type marketState struct {
	item    *models.Item
	wanters map[int64]float64
}

func (m *marketState) Create(ctx context.Context, in models.NewItem) (int64, error) {
	m.item = &models.Item{
		ID:           1,
		Name:         in.Name,
		Price:        in.Price,
		CanBargain:   in.CanBargain,
		CategoryName: in.Category,
		OwnerID:      alice.ID,
		Status:       models.ItemActive,
	}
	return m.item.ID, nil
}
func (m *marketState) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	if m.item == nil || m.item.ID != id {
		return nil, nil
	}
	found := *m.item
	return &found, nil
}
func (m *marketState) ListAll(ctx context.Context) ([]models.Item, error) {
	if m.item == nil {
		return nil, nil
	}
	return []models.Item{*m.item}, nil
}
func (m *marketState) ListMine(ctx context.Context, ownerID int64) ([]models.Item, error) {
	return m.ListAll(ctx)
}
func (m *marketState) Search(ctx context.Context, category, keyword string) ([]models.Item, error) {
	return m.ListAll(ctx)
}
func (m *marketState) Revise(ctx context.Context, id int64, patch models.ItemPatch) error {
	if patch.Price != nil {
		m.item.Price = *patch.Price
	}
	return nil
}
func (m *marketState) Delete(ctx context.Context, id int64) error {
	m.item = nil
	return nil
}

func (m *marketState) AddWant(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error) {
	if _, ok := m.wanters[userID]; ok {
		return false, nil
	}
	m.wanters[userID] = offerPrice
	m.item.WantCount = len(m.wanters)
	return true, nil
}
func (m *marketState) WantersFor(ctx context.Context, itemID int64) ([]models.User, error) {
	return []models.User{*bob}, nil
}
func (m *marketState) ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error) {
	if _, ok := m.wanters[userID]; !ok {
		return nil, nil
	}
	return []models.Item{*m.item}, nil
}
func (m *marketState) ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error) {
	return nil, nil
}
func (m *marketState) ConfirmSold(ctx context.Context, itemID, buyerID int64) error {
	if m.item.Status == models.ItemSold {
		return service.ErrAlreadySold
	}
	if _, ok := m.wanters[buyerID]; !ok {
		return service.ErrNotAWanter
	}
	m.item.Status = models.ItemSold
	m.item.BuyerID = &buyerID
	return nil
}

// TestMarketplaceLifecycle walks the happy path end to end: alice lists a
// bargainable novel, bob records an intent with an offer, alice confirms
// the sale to bob, and from then on the listing is locked even for alice.
func TestMarketplaceLifecycle(t *testing.T) {
	state := &marketState{wanters: make(map[int64]float64)}
	items := &ItemHandler{Catalog: state}
	wants := &WantHandler{Wants: state, Catalog: state}

	// alice publishes the item.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/items",
		bytes.NewBufferString(`{"name":"Novel","category":"Books","price":20,"can_bargain":true}`))
	items.Create(rec, asUser(req, alice))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// bob records a bargain offer of 15.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/items/1/want", bytes.NewBufferString(`{"offer_price":15}`))
	wants.Add(rec, asUser(withURLParam(req, "id", "1"), bob))
	if rec.Code != http.StatusOK {
		t.Fatalf("want: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if state.item.WantCount != 1 {
		t.Fatalf("expected want count 1, got %d", state.item.WantCount)
	}

	// the recorded intent now blocks alice from revising her own listing.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("PATCH", "/api/items/1", bytes.NewBufferString(`{"price":18}`))
	items.Revise(rec, asUser(withURLParam(req, "id", "1"), alice))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("revise wanted item: expected 403, got %d", rec.Code)
	}

	// alice confirms the sale to bob.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/items/1/sold", bytes.NewBufferString(`{"buyer_id":3}`))
	wants.ConfirmSold(rec, asUser(withURLParam(req, "id", "1"), alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if state.item.Status != models.ItemSold {
		t.Fatalf("expected item sold, got %q", state.item.Status)
	}
	if state.item.BuyerID == nil || *state.item.BuyerID != bob.ID {
		t.Fatalf("expected buyer %d, got %v", bob.ID, state.item.BuyerID)
	}

	// a second confirmation is rejected; the sale is final.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/items/1/sold", bytes.NewBufferString(`{"buyer_id":3}`))
	wants.ConfirmSold(rec, asUser(withURLParam(req, "id", "1"), alice))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second confirm: expected 409, got %d", rec.Code)
	}

	// bob still sees the item in his want history after the sale.
	rec = httptest.NewRecorder()
	wants.Mine(rec, asUser(httptest.NewRequest("GET", "/api/wants/mine", nil), bob))
	if rec.Code != http.StatusOK {
		t.Fatalf("mine: expected 200, got %d", rec.Code)
	}
	var history []models.Item
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Status != models.ItemSold {
		t.Fatalf("expected one sold item in history, got %+v", history)
	}
}
