package products

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones del pet shop en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("add_product", addProductAction(svc))
	d.Register("get_products", listProductsAction(svc))
	d.Register("get_product", getProductAction(svc))
	d.RegisterMutation("update_product", updateProductAction(svc))
	d.RegisterMutation("delete_product", deleteProductAction(svc))
}

type addProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func addProductAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage products")
		}

		var req addProductRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		prod, err := svc.Create(r.HTTP.Context(), CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Product added", "product": prod})
	}
}

func listProductsAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var (
			list []Product
			err  error
		)
		if p.IsStaff() {
			list, err = svc.ListAll(r.HTTP.Context())
		} else {
			list, err = svc.ListActive(r.HTTP.Context())
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

func getProductAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		if _, ok := middleware.GetPrincipal(r.HTTP.Context()); !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			ProductID string `json:"product_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.ProductID == "" {
			return dispatch.Fail("product_id is required")
		}

		prod, err := svc.GetByID(r.HTTP.Context(), req.ProductID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(prod)
	}
}

type updateProductRequest struct {
	ProductID   string   `json:"product_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func updateProductAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage products")
		}

		var req updateProductRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.ProductID == "" {
			return dispatch.Fail("product_id is required")
		}

		prod, err := svc.Update(r.HTTP.Context(), req.ProductID, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Product updated", "product": prod})
	}
}

func deleteProductAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage products")
		}

		var req struct {
			ProductID string `json:"product_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.ProductID == "" {
			return dispatch.Fail("product_id is required")
		}

		if err := svc.Delete(r.HTTP.Context(), req.ProductID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Product removed"})
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Product not found")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid product fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
