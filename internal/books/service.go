// Package books is the application layer over the costing and ledger engines.
//
// Every read goes through a snapshot cache: when the store cannot be read the
// last loaded snapshot is served and the result is marked stale. Writes are
// optimistic. The new snapshot is cached first; a failed store write or a
// failed mirror call only adds a warning and nothing is rolled back. A change
// the store refused is held on its cache and replayed over later reads until
// a write for the same key succeeds.
package books

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/ledger"
	"github.com/Simplici0/spicebooks/internal/logger"
	"github.com/Simplici0/spicebooks/internal/orders"
	"github.com/Simplici0/spicebooks/internal/snapshot"
)

// Store is the durable snapshot store.
type Store interface {
	ListIngredients(ctx context.Context) (costing.Catalog, error)
	InsertIngredient(ctx context.Context, ing costing.MasterIngredient) error
	UpdateIngredientPrice(ctx context.Context, name string, price float64) error

	ListRecipes(ctx context.Context) ([]costing.Recipe, error)
	InsertRecipe(ctx context.Context, r costing.Recipe) error
	UpdateRecipe(ctx context.Context, r costing.Recipe) error
	SetRecipeHidden(ctx context.Context, id int64, hidden bool) error

	ListEntries(ctx context.Context, register ledger.Register) (ledger.Ledger, error)
	InsertEntry(ctx context.Context, e ledger.Entry) error
	UpdateEntry(ctx context.Context, e ledger.Entry) error
	DeleteEntry(ctx context.Context, register ledger.Register, id int64) error

	ListOrders(ctx context.Context) ([]orders.Order, error)
	InsertOrder(ctx context.Context, o orders.Order) error
	SaveInvoice(ctx context.Context, inv orders.Invoice) error
	InvoiceByOrder(ctx context.Context, orderID int64) (orders.Invoice, error)
}

// Mirror receives a copy of every catalog, recipe and stock write.
type Mirror interface {
	UpsertIngredient(ctx context.Context, ing costing.MasterIngredient) error
	UpsertRecipe(ctx context.Context, r costing.Recipe) error
	UpsertEntry(ctx context.Context, e ledger.Entry) error
	DeleteEntry(ctx context.Context, register ledger.Register, id int64) error
}

// Deps groups the collaborators of a Service. Mirror, Logger and Now are optional.
type Deps struct {
	Store      Store
	Mirror     Mirror
	Logger     *zap.Logger
	TaxPercent float64
	Now        func() time.Time
}

// Result wraps a value with the non-blocking notices produced while computing it.
type Result[T any] struct {
	Value    T        `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
	Stale    bool     `json:"stale"`
}

func (r *Result[T]) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Service coordinates the store, the mirror and the pure engines.
type Service struct {
	store  Store
	mirror Mirror
	log    *zap.Logger
	tax    float64
	now    func() time.Time

	// writeMu serialises read-modify-write cycles so derived ids stay unique.
	writeMu sync.Mutex

	catalog   snapshot.Cache[costing.Catalog]
	recipes   snapshot.Cache[[]costing.Recipe]
	registers map[ledger.Register]*snapshot.Cache[ledger.Ledger]
	orders    snapshot.Cache[[]orders.Order]

	// lastEntryID is the highest entry id handed out per register since start,
	// so deleting the newest entry does not free its id for reuse.
	lastEntryID map[ledger.Register]int64

	invoicesMu sync.Mutex
	invoices   map[int64]orders.Invoice
}

// New builds a Service.
func New(deps Deps) *Service {
	s := &Service{
		store:       deps.Store,
		mirror:      deps.Mirror,
		log:         logger.Named(deps.Logger, "books"),
		tax:         deps.TaxPercent,
		now:         deps.Now,
		registers:   make(map[ledger.Register]*snapshot.Cache[ledger.Ledger], len(ledger.Registers)),
		lastEntryID: make(map[ledger.Register]int64, len(ledger.Registers)),
		invoices:    make(map[int64]orders.Invoice),
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, r := range ledger.Registers {
		s.registers[r] = &snapshot.Cache[ledger.Ledger]{}
	}
	return s
}

// load reads through cache. A read failure is downgraded to a stale result
// when a previous snapshot exists.
func load[T, V any](ctx context.Context, s *Service, what string, c *snapshot.Cache[T], fetch func(context.Context) (T, error), res *Result[V]) (T, error) {
	v, stale, err := c.Load(ctx, s.now(), fetch)
	if err != nil && !stale {
		s.log.Error("store read failed", zap.String("collection", what), zap.Error(err))
		return v, apperror.NewUnavailable(what, err)
	}
	if stale {
		s.log.Warn("serving cached snapshot", zap.String("collection", what), zap.Error(err))
		res.Stale = true
		res.warn("showing last loaded " + what + ": store is unreachable")
	}
	return v, nil
}

// persist runs a store write. Failures keep the optimistic snapshot and become a warning.
func persist[V any](ctx context.Context, s *Service, op string, res *Result[V], write func(context.Context) error) bool {
	if err := write(ctx); err != nil {
		s.log.Warn("store write failed", zap.String("op", op), zap.Error(err))
		res.warn(op + " was not saved: " + err.Error())
		return false
	}
	return true
}

// persistHeld holds change over c while write runs, so fresh reads keep
// showing it. The hold is released only once the store accepts the write;
// after a failure the change stays replayed over every later read.
func persistHeld[T, V any](ctx context.Context, s *Service, c *snapshot.Cache[T], key, op string, res *Result[V], change func(T) T, write func(context.Context) error) {
	c.Hold(key, change)
	if persist(ctx, s, op, res, write) {
		c.Release(key)
		return
	}
	s.log.Info("holding unsaved change", zap.String("key", key), zap.Int("pending", c.Pending()))
}

// mirrorWrite forwards a write to the hosted backend when one is configured.
func mirrorWrite[V any](ctx context.Context, s *Service, op string, res *Result[V], write func(context.Context, Mirror) error) {
	if s.mirror == nil {
		return
	}
	if err := write(ctx, s.mirror); err != nil {
		s.log.Warn("mirror write failed", zap.String("op", op), zap.Error(err))
		res.warn(op + " was not synced to the hosted backend: " + err.Error())
	}
}

func (s *Service) register(r ledger.Register) (*snapshot.Cache[ledger.Ledger], error) {
	c, ok := s.registers[r]
	if !ok {
		return nil, apperror.NewValidation("unknown register").WithDetail("register", string(r))
	}
	return c, nil
}
