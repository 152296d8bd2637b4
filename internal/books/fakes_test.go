package books

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/ledger"
	"github.com/Simplici0/spicebooks/internal/orders"
	"github.com/Simplici0/spicebooks/internal/store"
)

var errOffline = errors.New("store offline")

type fakeStore struct {
	mu sync.Mutex

	failReads  bool
	failWrites bool
	writes     int

	catalog  costing.Catalog
	recipes  []costing.Recipe
	entries  map[ledger.Register]ledger.Ledger
	orders   []orders.Order
	invoices map[int64]orders.Invoice
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:  map[ledger.Register]ledger.Ledger{},
		invoices: map[int64]orders.Invoice{},
	}
}

func (f *fakeStore) read() error {
	if f.failReads {
		return errOffline
	}
	return nil
}

func (f *fakeStore) write() error {
	f.writes++
	if f.failWrites {
		return errOffline
	}
	return nil
}

func (f *fakeStore) ListIngredients(context.Context) (costing.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.read(); err != nil {
		return nil, err
	}
	return append(costing.Catalog{}, f.catalog...), nil
}

func (f *fakeStore) InsertIngredient(_ context.Context, ing costing.MasterIngredient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.catalog = append(f.catalog, ing)
	return nil
}

func (f *fakeStore) UpdateIngredientPrice(_ context.Context, name string, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.catalog = costing.UpdateMasterIngredientPrice(f.catalog, name, price)
	return nil
}

func (f *fakeStore) ListRecipes(context.Context) ([]costing.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.read(); err != nil {
		return nil, err
	}
	return append([]costing.Recipe{}, f.recipes...), nil
}

func (f *fakeStore) InsertRecipe(_ context.Context, r costing.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.recipes = append(f.recipes, r)
	return nil
}

func (f *fakeStore) UpdateRecipe(_ context.Context, r costing.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	next, ok := costing.ReplaceRecipe(f.recipes, r)
	if !ok {
		return store.ErrNotFound
	}
	f.recipes = next
	return nil
}

func (f *fakeStore) SetRecipeHidden(_ context.Context, id int64, hidden bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	for i := range f.recipes {
		if f.recipes[i].ID == id {
			f.recipes[i].IsHidden = hidden
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ListEntries(_ context.Context, register ledger.Register) (ledger.Ledger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.read(); err != nil {
		return nil, err
	}
	return append(ledger.Ledger{}, f.entries[register]...), nil
}

func (f *fakeStore) InsertEntry(_ context.Context, e ledger.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.entries[e.Register] = append(f.entries[e.Register], e)
	return nil
}

func (f *fakeStore) UpdateEntry(_ context.Context, e ledger.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	next, _, ok := ledger.EditEntry(f.entries[e.Register], e.ID, ledger.Fields{
		Date: e.Date, Opening: e.Opening, Inbound: e.Inbound, Outbound: e.Outbound, Wastage: e.Wastage,
	})
	if !ok {
		return store.ErrNotFound
	}
	f.entries[e.Register] = next
	return nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, register ledger.Register, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	next, ok := ledger.DeleteEntry(f.entries[register], id)
	if !ok {
		return store.ErrNotFound
	}
	f.entries[register] = next
	return nil
}

func (f *fakeStore) ListOrders(context.Context) ([]orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.read(); err != nil {
		return nil, err
	}
	return append([]orders.Order{}, f.orders...), nil
}

func (f *fakeStore) InsertOrder(_ context.Context, o orders.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeStore) SaveInvoice(_ context.Context, inv orders.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(); err != nil {
		return err
	}
	f.invoices[inv.OrderID] = inv
	return nil
}

func (f *fakeStore) InvoiceByOrder(_ context.Context, orderID int64) (orders.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.read(); err != nil {
		return orders.Invoice{}, err
	}
	inv, ok := f.invoices[orderID]
	if !ok {
		return orders.Invoice{}, store.ErrNotFound
	}
	return inv, nil
}

type fakeMirror struct {
	fail    bool
	upserts []string
	deletes []int64
}

func (m *fakeMirror) record(name string) error {
	if m.fail {
		return errors.New("hosted backend unreachable")
	}
	m.upserts = append(m.upserts, name)
	return nil
}

func (m *fakeMirror) UpsertIngredient(_ context.Context, ing costing.MasterIngredient) error {
	return m.record(ing.Name)
}

func (m *fakeMirror) UpsertRecipe(_ context.Context, r costing.Recipe) error {
	return m.record(r.Name)
}

func (m *fakeMirror) UpsertEntry(_ context.Context, e ledger.Entry) error {
	return m.record(e.ItemName)
}

func (m *fakeMirror) DeleteEntry(_ context.Context, _ ledger.Register, id int64) error {
	if m.fail {
		return errors.New("hosted backend unreachable")
	}
	m.deletes = append(m.deletes, id)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 2, 14, 10, 30, 0, 0, time.UTC)
}

func newTestService(st *fakeStore, m *fakeMirror) *Service {
	deps := Deps{Store: st, TaxPercent: 5, Now: fixedNow}
	if m != nil {
		deps.Mirror = m
	}
	return New(deps)
}
