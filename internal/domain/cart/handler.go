package cart

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de carrito en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("add_to_cart", addAction(svc))
	d.Register("get_cart", listAction(svc))
	d.RegisterMutation("update_cart_item", setQuantityAction(svc))
	d.RegisterMutation("remove_from_cart", removeAction(svc))
	d.RegisterMutation("clear_cart", clearAction(svc))
}

func addAction(svc *Service) dispatch.HandlerFunc {
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

		it, err := svc.Add(r.HTTP.Context(), p.UserID, req.ProductID, req.Quantity)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Added to cart", "item": it})
	}
}

func listAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		lines, total, err := svc.List(r.HTTP.Context(), p.UserID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"data": lines, "total": total})
	}
}

func setQuantityAction(svc *Service) dispatch.HandlerFunc {
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

		if err := svc.SetQuantity(r.HTTP.Context(), p.UserID, req.ProductID, req.Quantity); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Cart updated"})
	}
}

func removeAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			ProductID string `json:"product_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		if err := svc.Remove(r.HTTP.Context(), p.UserID, req.ProductID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Removed from cart"})
	}
}

func clearAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		if err := svc.Clear(r.HTTP.Context(), p.UserID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Cart cleared"})
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Cart item not found")
	case errors.Is(err, ErrProductUnavailable):
		return dispatch.Fail("Product is not available")
	case errors.Is(err, ErrInsufficientStock):
		return dispatch.Fail("Not enough stock")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid cart fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
