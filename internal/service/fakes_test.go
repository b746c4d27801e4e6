package service

import (
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Fixed clock for deterministic timestamps in tests.
var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ---- product repository fake ----

type fakeProductRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Product

	// contend makes the next N conditional decrements report zero rows,
	// as if a concurrent writer kept winning the race.
	contend int
	// failAdd makes AddQuantity fail outright.
	failAdd bool
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{items: map[uuid.UUID]model.Product{}}
}

func (f *fakeProductRepo) add(p model.Product) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.items[p.ID] = p
	return p.ID
}

func (f *fakeProductRepo) get(id uuid.UUID) model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeProductRepo) Create(product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.SKU == product.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.items[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) FindAll() ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeProductRepo) FindBySKU(sku string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) Update(product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.items[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) Delete(id uuid.UUID, deletedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProductRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeProductRepo) DecrementQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contend > 0 {
		f.contend--
		return false, nil
	}
	p, ok := f.items[id]
	if !ok || p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	p.UpdatedBy = updatedBy
	f.items[id] = p
	return true, nil
}

func (f *fakeProductRepo) AddQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return false, errors.New("store unavailable")
	}
	p, ok := f.items[id]
	if !ok {
		return false, nil
	}
	p.Quantity += qty
	p.UpdatedBy = updatedBy
	f.items[id] = p
	return true, nil
}

func (f *fakeProductRepo) SetQuantity(id uuid.UUID, qty int, updatedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return false, nil
	}
	p.Quantity = qty
	p.UpdatedBy = updatedBy
	f.items[id] = p
	return true, nil
}

func (f *fakeProductRepo) FindLowStock(threshold int) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, p := range f.items {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindExpiringBefore(cutoff time.Time) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Product
	for _, p := range f.items {
		if p.ExpiryDate != nil && !p.ExpiryDate.After(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- movement repository fake ----

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{}
}

func (f *fakeMovementRepo) Create(movement *model.StockMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = testNow
	}
	f.movements = append(f.movements, *movement)
	return nil
}

func (f *fakeMovementRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StockMovement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMovementRepo) GetDailyMovement(startDate, endDate time.Time) ([]repository.DailyMovementData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byDay := map[string]*repository.DailyMovementData{}
	for _, m := range f.movements {
		if m.CreatedAt.Before(startDate) || m.CreatedAt.After(endDate) {
			continue
		}
		day := m.CreatedAt.Format("2006-01-02")
		data, ok := byDay[day]
		if !ok {
			data = &repository.DailyMovementData{Date: day}
			byDay[day] = data
		}
		switch m.Type {
		case model.MovementSale:
			data.Sold += m.Quantity
		case model.MovementRestock:
			data.Restocked += m.Quantity
		}
	}
	var out []repository.DailyMovementData
	for _, data := range byDay {
		out = append(out, *data)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ---- bill repository fake ----

type fakeBillRepo struct {
	mu    sync.Mutex
	bills map[string]model.Bill
	order []string
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: map[string]model.Bill{}}
}

func (f *fakeBillRepo) Create(bill *model.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bills[bill.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.bills[bill.ID] = *bill
	f.order = append(f.order, bill.ID)
	return nil
}

func (f *fakeBillRepo) FindByID(id string) (*model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bill, ok := f.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &bill, nil
}

func (f *fakeBillRepo) Exists(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bills[id]
	return ok, nil
}

func (f *fakeBillRepo) FindAll(limit int) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Bill
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.bills[f.order[i]])
	}
	return out, nil
}

func (f *fakeBillRepo) FindByDateRange(start, end time.Time, limit int) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Bill
	for _, bill := range f.bills {
		if bill.CreatedAt.Before(start) || bill.CreatedAt.After(end) {
			continue
		}
		out = append(out, bill)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBillRepo) SalesTotals(start, end time.Time) (decimal.Decimal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	var count int64
	for _, bill := range f.bills {
		if bill.CreatedAt.Before(start) || bill.CreatedAt.After(end) {
			continue
		}
		total = total.Add(bill.TotalAmount)
		count++
	}
	return total, count, nil
}

// ---- customer repository fake ----

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]model.Customer

	// missFirstLookup makes the next FindByMobile miss even when the row
	// exists, to stage a lost create race.
	missFirstLookup bool
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[uuid.UUID]model.Customer{}}
}

func (f *fakeCustomerRepo) add(c model.Customer) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.customers[c.ID] = c
	return c.ID
}

func (f *fakeCustomerRepo) byMobile(mobile string) (model.Customer, bool) {
	for _, c := range f.customers {
		if c.Mobile == mobile {
			return c, true
		}
	}
	return model.Customer{}, false
}

func (f *fakeCustomerRepo) Create(customer *model.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byMobile(customer.Mobile); ok {
		return gorm.ErrDuplicatedKey
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	f.customers[customer.ID] = *customer
	return nil
}

func (f *fakeCustomerRepo) FindAll() ([]model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCustomerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeCustomerRepo) FindByMobile(mobile string) (*model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missFirstLookup {
		f.missFirstLookup = false
		return nil, gorm.ErrRecordNotFound
	}
	c, ok := f.byMobile(mobile)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeCustomerRepo) Update(customer *model.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if other, ok := f.byMobile(customer.Mobile); ok && other.ID != customer.ID {
		return gorm.ErrDuplicatedKey
	}
	f.customers[customer.ID] = *customer
	return nil
}

func (f *fakeCustomerRepo) AppendPurchase(mobile, billID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byMobile(mobile)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.PurchaseHistory = append(c.PurchaseHistory, billID)
	c.PurchaseCount++
	t := at
	c.LastPurchaseDate = &t
	f.customers[c.ID] = c
	return nil
}

// ---- wiring helpers ----

func newTestInventory(products *fakeProductRepo, movements *fakeMovementRepo) *inventoryService {
	return &inventoryService{
		productRepo:  products,
		movementRepo: movements,
		hub:          nil,
		log:          testLogger(),
		now:          fixedClock,
	}
}

func newTestCustomers(customers *fakeCustomerRepo) *customerService {
	return &customerService{
		customerRepo: customers,
		now:          fixedClock,
	}
}

func newTestBilling(bills *fakeBillRepo, inventory InventoryService, customers CustomerService) *billingService {
	return &billingService{
		billRepo:  bills,
		inventory: inventory,
		customers: customers,
		hub:       nil,
		log:       testLogger(),
		now:       fixedClock,
	}
}
