package dto

import (
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
)

// CustomerRequest is the body of create and update requests. Pointer fields
// keep an absent or null value distinguishable from a zero value.
type CustomerRequest struct {
	ID   *int64  `json:"id,omitempty" example:"1"`
	Name *string `json:"name" example:"John Doe"`
}

// Validate checks the declared field constraints and reports every
// violation found.
func (r *CustomerRequest) Validate() apperrors.Violations {
	var v apperrors.Violations
	if r.ID != nil {
		customer.CheckID(*r.ID, &v)
	}
	if r.Name == nil {
		v.Add("name", "must not be null")
	} else {
		customer.CheckName(*r.Name, &v)
	}
	return v
}

func (r *CustomerRequest) HasID() bool {
	return r.ID != nil
}

func (r *CustomerRequest) ToCustomer() *customer.Customer {
	cust := &customer.Customer{}
	if r.ID != nil {
		cust.ID = *r.ID
	}
	if r.Name != nil {
		cust.Name = *r.Name
	}
	return cust
}

type CustomerResponse struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"John Doe"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {

		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:   cust.ID,
		Name: cust.Name,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = NewCustomerResponse(cust)
	}
	return resp
}

type ViolationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorDetail struct {
	Message    string            `json:"message"`
	Field      string            `json:"field,omitempty"`
	Violations []ViolationDetail `json:"violations,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func NewViolationDetails(v apperrors.Violations) []ViolationDetail {
	details := make([]ViolationDetail, 0, len(v))
	for _, violation := range v {
		details = append(details, ViolationDetail{Field: violation.Field, Message: violation.Message})
	}
	return details
}
