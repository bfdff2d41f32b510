package orders

import (
	"errors"
	"net/http"
	"strings"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de órdenes en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("checkout", checkoutAction(svc))
	d.RegisterMutation("buy_now", buyNowAction(svc))
	d.Register("get_orders", listAction(svc))
	d.Register("get_order", getAction(svc))
	d.RegisterMutation("update_order_status", updateStatusAction(svc))
}

func checkoutAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		o, err := svc.Checkout(r.HTTP.Context(), p.UserID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Order placed", "order": o})
	}
}

func buyNowAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		o, err := svc.BuyNow(r.HTTP.Context(), p.UserID, req.ProductID, req.Quantity)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Order placed", "order": o})
	}
}

func listAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var (
			list []Order
			err  error
		)
		if p.IsStaff() {
			list, err = svc.ListAll(r.HTTP.Context())
		} else {
			list, err = svc.ListByUser(r.HTTP.Context(), p.UserID)
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

func getAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			OrderID string `json:"order_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.OrderID == "" {
			return dispatch.Fail("order_id is required")
		}

		o, err := svc.Get(r.HTTP.Context(), p.UserID, p.IsStaff(), req.OrderID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(o)
	}
}

func updateStatusAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can change order status")
		}

		var req struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.OrderID == "" || req.Status == "" {
			return dispatch.Fail("order_id and status are required")
		}

		o, err := svc.UpdateStatus(r.HTTP.Context(), req.OrderID, Status(strings.TrimSpace(req.Status)))
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Order status updated", "order": o})
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Order not found")
	case errors.Is(err, ErrForbidden):
		return dispatch.Fail("You can only view your own orders")
	case errors.Is(err, ErrEmptyCart):
		return dispatch.Fail("Your cart is empty")
	case errors.Is(err, ErrProductUnavailable):
		return dispatch.Fail("Product is not available")
	case errors.Is(err, ErrInsufficientStock):
		return dispatch.Fail("Not enough stock")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid order fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
