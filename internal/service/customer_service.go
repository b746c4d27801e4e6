package service

import (
	"errors"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/phone"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateCustomerRequest carries a partial update; nil fields are left as-is.
type UpdateCustomerRequest struct {
	Name   *string `json:"name,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
	Email  *string `json:"email,omitempty"`
}

// CustomerService owns customer identity, keyed by the E.164-normalized
// mobile number.
type CustomerService interface {
	FindOrCreate(info *model.CustomerInfo, actor string) (*model.Customer, error)
	AddPurchase(mobile, billID string) error
	Update(id uuid.UUID, req *UpdateCustomerRequest, actor string) (*model.Customer, error)
	Get(id uuid.UUID) (*model.Customer, error)
	List() ([]model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	now          nowFunc
}

func NewCustomerService(cRepo repository.CustomerRepository) CustomerService {
	return &customerService{
		customerRepo: cRepo,
		now:          utcNow,
	}
}

// FindOrCreate looks the customer up by mobile and creates the record when
// absent. A concurrent create racing on the same new mobile loses to the
// store's uniqueness constraint; the loser re-reads and returns the winner.
func (s *customerService) FindOrCreate(info *model.CustomerInfo, actor string) (*model.Customer, error) {
	if errs := validator.ValidateStruct(info); len(errs) > 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, errs[0].Message())
	}

	mobile, err := phone.Normalize(info.Mobile)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidArgument, "invalid mobile number", err)
	}

	existing, err := s.customerRepo.FindByMobile(mobile)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := &model.Customer{
		Name:            info.Name,
		Mobile:          mobile,
		Email:           info.Email,
		PurchaseHistory: model.BillRefs{},
	}
	customer.CreatedBy = actor
	customer.UpdatedBy = actor

	if err := s.customerRepo.Create(customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the creation race; the winner's record is authoritative.
			return s.customerRepo.FindByMobile(mobile)
		}
		return nil, err
	}

	return customer, nil
}

func (s *customerService) AddPurchase(mobile, billID string) error {
	normalized, err := phone.Normalize(mobile)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "invalid mobile number", err)
	}

	if err := s.customerRepo.AppendPurchase(normalized, billID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.KindNotFound, "customer with mobile %s not found", normalized)
		}
		return err
	}
	return nil
}

func (s *customerService) Update(id uuid.UUID, req *UpdateCustomerRequest, actor string) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "customer %s not found", id)
		}
		return nil, err
	}

	if req.Mobile != nil {
		mobile, err := phone.Normalize(*req.Mobile)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidArgument, "invalid mobile number", err)
		}
		other, err := s.customerRepo.FindByMobile(mobile)
		if err == nil && other.ID != id {
			return nil, apperr.Newf(apperr.KindDuplicateResource, "mobile %s belongs to another customer", mobile)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		customer.Mobile = mobile
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	customer.UpdatedBy = actor

	if err := s.customerRepo.Update(customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.KindDuplicateResource, "mobile belongs to another customer")
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Get(id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "customer %s not found", id)
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) List() ([]model.Customer, error) {
	return s.customerRepo.FindAll()
}
