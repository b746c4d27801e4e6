package service

import (
	"testing"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFindOrCreateNormalizesMobile(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestCustomers(repo)

	created, err := svc.FindOrCreate(&model.CustomerInfo{
		Name:   "Asha",
		Mobile: "98765 43210",
	}, "cashier@shop.test")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", created.Mobile)
	assert.NotNil(t, created.PurchaseHistory)

	// A different spelling of the same number resolves to the same record.
	found, err := svc.FindOrCreate(&model.CustomerInfo{
		Name:   "A. Sharma",
		Mobile: "+91 98765 43210",
	}, "cashier@shop.test")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Asha", found.Name, "existing records keep their name")

	all, _ := repo.FindAll()
	assert.Len(t, all, 1)
}

func TestFindOrCreateRejectsInvalidMobile(t *testing.T) {
	svc := newTestCustomers(newFakeCustomerRepo())

	_, err := svc.FindOrCreate(&model.CustomerInfo{Name: "Asha", Mobile: "12"}, "cashier@shop.test")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestFindOrCreateRequiresNameAndMobile(t *testing.T) {
	svc := newTestCustomers(newFakeCustomerRepo())

	_, err := svc.FindOrCreate(&model.CustomerInfo{Mobile: "9876543210"}, "cashier@shop.test")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestFindOrCreateLostRaceReturnsWinner(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestCustomers(repo)

	winnerID := repo.add(model.Customer{
		Name:            "Asha",
		Mobile:          "+919876543210",
		PurchaseHistory: model.BillRefs{},
	})
	// The row exists but the first lookup misses, so the service tries to
	// create and collides on the unique mobile.
	repo.missFirstLookup = true

	got, err := svc.FindOrCreate(&model.CustomerInfo{
		Name:   "Asha Duplicate",
		Mobile: "9876543210",
	}, "cashier@shop.test")
	require.NoError(t, err)
	assert.Equal(t, winnerID, got.ID)
	assert.Equal(t, "Asha", got.Name)
}

func TestAddPurchaseMaintainsHistoryInvariant(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestCustomers(repo)
	repo.add(model.Customer{Name: "Asha", Mobile: "+919876543210", PurchaseHistory: model.BillRefs{}})

	require.NoError(t, svc.AddPurchase("9876543210", "bill-1"))
	require.NoError(t, svc.AddPurchase("+91 98765 43210", "bill-2"))

	customer, err := repo.FindByMobile("+919876543210")
	require.NoError(t, err)
	assert.Equal(t, model.BillRefs{"bill-1", "bill-2"}, customer.PurchaseHistory)
	assert.Equal(t, 2, customer.PurchaseCount)
	assert.Len(t, customer.PurchaseHistory, customer.PurchaseCount)
	require.NotNil(t, customer.LastPurchaseDate)
	assert.Equal(t, testNow, *customer.LastPurchaseDate)
}

func TestAddPurchaseUnknownCustomer(t *testing.T) {
	svc := newTestCustomers(newFakeCustomerRepo())

	err := svc.AddPurchase("9876543210", "bill-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateCustomerPartialMerge(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestCustomers(repo)
	id := repo.add(model.Customer{Name: "Asha", Mobile: "+919876543210"})

	updated, err := svc.Update(id, &UpdateCustomerRequest{
		Email: strPtr("asha@example.com"),
	}, "admin@shop.test")
	require.NoError(t, err)

	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "+919876543210", updated.Mobile)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "asha@example.com", *updated.Email)
}

func TestUpdateCustomerMobileCollision(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := newTestCustomers(repo)
	id := repo.add(model.Customer{Name: "Asha", Mobile: "+919876543210"})
	repo.add(model.Customer{Name: "Ravi", Mobile: "+919123456789"})

	_, err := svc.Update(id, &UpdateCustomerRequest{
		Mobile: strPtr("9123456789"),
	}, "admin@shop.test")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicateResource))
}

func TestUpdateCustomerNotFound(t *testing.T) {
	svc := newTestCustomers(newFakeCustomerRepo())

	_, err := svc.Update(uuid.New(), &UpdateCustomerRequest{Name: strPtr("X")}, "admin@shop.test")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
