package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/featureflags"
	"github.com/aryan0dhankhar/ordertrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/ordertrack/internal/security"
)

// FlagIdempotentOrderDelete restores success responses for deletes of
// unknown order ids.
const FlagIdempotentOrderDelete = "idempotent_order_delete"

// Page size bounds used when OrderServiceConfig leaves them unset
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	// ErrProjectIDRequired rejects order listings without a project
	ErrProjectIDRequired = domain.NewValidationError("Project ID is required",
		map[string]string{"projectId": "cannot be blank"})
	// ErrPageOutOfRange rejects pages whose row offset cannot be represented
	ErrPageOutOfRange = domain.NewValidationError("Invalid page",
		map[string]string{"page": "is out of range"})
)

// ListOrdersInput holds the query of an order listing
type ListOrdersInput struct {
	ProjectID      int64
	Page           int
	Limit          int
	PaymentStatus  string
	DeliveryStatus string
	Search         string
}

// Pagination describes the returned window
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// OrderPage is one page of orders
type OrderPage struct {
	Orders     []*domain.Order `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// CreateOrderInput is the order creation body
type CreateOrderInput struct {
	ProjectID      int64   `json:"projectId"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	ProductURL     *string `json:"productUrl"`
	Quantity       *int    `json:"quantity"`
	InvoiceNumber  *string `json:"invoiceNumber"`
	PaymentStatus  string  `json:"paymentStatus"`
	DeliveryStatus string  `json:"deliveryStatus"`
}

// OrderServiceConfig tunes paging and feature flags
type OrderServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	FlagEnabled     func(name string) bool
}

// OrderService manages orders inside projects the caller owns
type OrderService struct {
	orders   domain.OrderRepository
	projects *ProjectService
	authz    *security.AuthorizationService
	cfg      OrderServiceConfig
	logger   *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders domain.OrderRepository,
	projects *ProjectService,
	authz *security.AuthorizationService,
	cfg OrderServiceConfig,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = MaxPageSize
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(DefaultPageSize, cfg.MaxPageSize)
	}
	if cfg.FlagEnabled == nil {
		cfg.FlagEnabled = featureflags.Enabled
	}
	return &OrderService{orders: orders, projects: projects, authz: authz, cfg: cfg, logger: logger}
}

func paymentStatusValues() []any {
	out := make([]any, len(domain.PaymentStatuses))
	for i, s := range domain.PaymentStatuses {
		out[i] = string(s)
	}
	return out
}

func deliveryStatusValues() []any {
	out := make([]any, len(domain.DeliveryStatuses))
	for i, s := range domain.DeliveryStatuses {
		out[i] = string(s)
	}
	return out
}

// positiveQuantity rejects quantities below one. validation.Min treats zero
// as empty and would let it through.
var positiveQuantity = validation.By(func(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if n, ok := v.(int); ok && n < 1 {
		return errors.New("must be no less than 1")
	}
	return nil
})

// clampPage bounds page to >= 1 and limit to 1..max. A page whose offset
// would overflow int is refused rather than clamped.
func (s *OrderService) clampPage(page, limit int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if page-1 > math.MaxInt/limit {
		return domain.Page{}, ErrPageOutOfRange
	}
	return domain.Page{Page: page, Limit: limit}, nil
}

// List returns one page of a project's orders, newest first
func (s *OrderService) List(ctx context.Context, user *domain.User, in ListOrdersInput) (*OrderPage, error) {
	if err := s.authz.ValidatePermission(user, security.PermManageOrders); err != nil {
		return nil, err
	}
	if in.ProjectID <= 0 {
		return nil, ErrProjectIDRequired
	}
	err := validation.Errors{
		"paymentStatus":  validation.Validate(in.PaymentStatus, validation.In(paymentStatusValues()...)),
		"deliveryStatus": validation.Validate(in.DeliveryStatus, validation.In(deliveryStatusValues()...)),
		"search":         validation.Validate(in.Search, validation.Length(0, 255)),
	}.Filter()
	if err != nil {
		return nil, fieldErrors(err)
	}

	page, err := s.clampPage(in.Page, in.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := s.projects.Authorize(ctx, user, in.ProjectID); err != nil {
		return nil, err
	}

	filter := domain.OrderFilter{
		ProjectID:      in.ProjectID,
		PaymentStatus:  domain.PaymentStatus(in.PaymentStatus),
		DeliveryStatus: domain.DeliveryStatus(in.DeliveryStatus),
		Search:         strings.TrimSpace(in.Search),
	}

	orders, total, err := s.orders.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: total,
			Pages: page.Pages(total),
		},
	}, nil
}

// Create stores a new order in a project the caller owns
func (s *OrderService) Create(ctx context.Context, user *domain.User, in CreateOrderInput) (*domain.Order, error) {
	if err := s.authz.ValidatePermission(user, security.PermManageOrders); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = optional(in.Description)
	in.ProductURL = optional(in.ProductURL)
	in.InvoiceNumber = optional(in.InvoiceNumber)

	err := validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, validation.Required),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.ProductURL, validation.Length(0, 1000), is.URL),
		validation.Field(&in.Quantity, positiveQuantity),
		validation.Field(&in.InvoiceNumber, validation.Length(0, 100)),
		validation.Field(&in.PaymentStatus, validation.In(paymentStatusValues()...)),
		validation.Field(&in.DeliveryStatus, validation.In(deliveryStatusValues()...)),
	)
	if err != nil {
		return nil, fieldErrors(err)
	}

	if _, err := s.projects.Authorize(ctx, user, in.ProjectID); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ProjectID:      in.ProjectID,
		Title:          in.Title,
		Description:    in.Description,
		ProductURL:     in.ProductURL,
		Quantity:       1,
		InvoiceNumber:  in.InvoiceNumber,
		PaymentStatus:  domain.PaymentUnpaid,
		DeliveryStatus: domain.DeliveryPending,
	}
	if in.Quantity != nil {
		order.Quantity = *in.Quantity
	}
	if in.PaymentStatus != "" {
		order.PaymentStatus = domain.PaymentStatus(in.PaymentStatus)
	}
	if in.DeliveryStatus != "" {
		order.DeliveryStatus = domain.DeliveryStatus(in.DeliveryStatus)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.ObserveOrder("create")
	s.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.Int64("project_id", order.ProjectID),
		slog.Int64("user_id", user.ID),
	)
	return order, nil
}

// Get returns an order from a project the caller owns
func (s *OrderService) Get(ctx context.Context, user *domain.User, id int64) (*domain.Order, error) {
	if err := s.authz.ValidatePermission(user, security.PermManageOrders); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Authorize(ctx, user, order.ProjectID); err != nil {
		return nil, err
	}
	return order, nil
}

// Update applies a partial update. Only supplied fields change; the order
// keeps its id and project.
func (s *OrderService) Update(ctx context.Context, user *domain.User, id int64, patch domain.OrderPatch) (*domain.Order, error) {
	current, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := validatePatch(id, current, &patch); err != nil {
		return nil, err
	}

	updated, err := s.orders.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	metrics.ObserveOrder("update")
	s.logger.Info("order updated",
		slog.Int64("order_id", id),
		slog.Int64("user_id", user.ID),
	)
	return updated, nil
}

func validatePatch(id int64, current *domain.Order, p *domain.OrderPatch) error {
	errs := validation.Errors{}
	if p.ID != nil && *p.ID != id {
		errs["id"] = errors.New("must match the order being updated")
	}
	if p.ProjectID != nil && *p.ProjectID != current.ProjectID {
		errs["projectId"] = errors.New("orders cannot move between projects")
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
		errs["title"] = validation.Validate(title, validation.Required, validation.Length(1, 255))
	}
	if p.Description.Set {
		p.Description.Value = optional(p.Description.Value)
	}
	if p.ProductURL.Set {
		p.ProductURL.Value = optional(p.ProductURL.Value)
		errs["productUrl"] = validation.Validate(p.ProductURL.Value, validation.Length(0, 1000), is.URL)
	}
	if p.InvoiceNumber.Set {
		p.InvoiceNumber.Value = optional(p.InvoiceNumber.Value)
		errs["invoiceNumber"] = validation.Validate(p.InvoiceNumber.Value, validation.Length(0, 100))
	}
	if p.Quantity != nil {
		errs["quantity"] = validation.Validate(*p.Quantity, positiveQuantity)
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.Valid() {
		errs["paymentStatus"] = errors.New("must be one of unpaid, partial, paid")
	}
	if p.DeliveryStatus != nil && !p.DeliveryStatus.Valid() {
		errs["deliveryStatus"] = errors.New("must be one of pending, shipping, delivered")
	}
	return fieldErrors(errs.Filter())
}

// Delete removes an order from a project the caller owns. An unknown id is
// reported as not found unless FlagIdempotentOrderDelete is on.
func (s *OrderService) Delete(ctx context.Context, user *domain.User, id int64) error {
	if err := s.authz.ValidatePermission(user, security.PermManageOrders); err != nil {
		return err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) && s.cfg.FlagEnabled(FlagIdempotentOrderDelete) {
			return nil
		}
		return err
	}
	if _, err := s.projects.Authorize(ctx, user, order.ProjectID); err != nil {
		return err
	}

	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted && !s.cfg.FlagEnabled(FlagIdempotentOrderDelete) {
		return domain.ErrOrderNotFound
	}

	metrics.ObserveOrder("delete")
	s.logger.Info("order deleted",
		slog.Int64("order_id", id),
		slog.Int64("user_id", user.ID),
	)
	return nil
}
