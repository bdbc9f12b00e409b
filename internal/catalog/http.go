package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"MiniCatalog/internal/auth"
	"MiniCatalog/pkg/kit"
	"MiniCatalog/pkg/recordstore"
)

type Server struct {
	Service  *Service
	Log      *zap.Logger
	Validate *validator.Validate

	// RequireUser guards every mutating route.
	RequireUser func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.listProducts)
	r.Get("/{id}", s.getProduct)
	r.Get("/{id}/reviews", s.listReviews)
	r.Get("/{id}/reviews/{rid}", s.getReview)

	r.Group(func(pr chi.Router) {
		pr.Use(s.RequireUser)

		pr.Post("/", s.createProduct)
		pr.Put("/{id}", s.updateProduct)
		pr.Delete("/{id}", s.deleteProduct)

		pr.Post("/{id}/reviews", s.createReview)
		pr.Put("/{id}/reviews/{rid}", s.updateReview)
		pr.Delete("/{id}/reviews/{rid}", s.deleteReview)
	})

	return r
}

type reviewReq struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Service.ListProducts())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := s.Service.GetProduct(id)
	if errors.Is(err, ErrProductNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "Product with supplied ID does not exist", map[string]any{"id": id})
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductIn
	if !kit.DecodeValid(w, r, s.Validate, &in) {
		return
	}

	p := s.Service.CreateProduct(in)
	s.Log.Info("product created", zap.Int("product_id", p.ID), zap.String("user", user(r)))
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in ProductIn
	if !kit.DecodeValid(w, r, s.Validate, &in) {
		return
	}

	p, err := s.Service.UpdateProduct(id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := s.Service.DeleteProduct(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.Log.Info("product deleted",
		zap.Int("product_id", id),
		zap.Int("reviews", len(p.Reviews)),
		zap.String("user", user(r)),
	)
	kit.WriteMessage(w, http.StatusOK, "Product deleted successfully.")
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := s.Service.ListReviews(pid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, reviews)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	pid, rid, ok := reviewIDs(w, r)
	if !ok {
		return
	}

	rev, err := s.Service.GetReview(pid, rid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, rev)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req reviewReq
	if !kit.DecodeValid(w, r, s.Validate, &req) {
		return
	}

	rev, err := s.Service.CreateReview(pid, req.Content, user(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, rev)
}

func (s *Server) updateReview(w http.ResponseWriter, r *http.Request) {
	pid, rid, ok := reviewIDs(w, r)
	if !ok {
		return
	}

	var req reviewReq
	if !kit.DecodeValid(w, r, s.Validate, &req) {
		return
	}

	rev, err := s.Service.UpdateReview(pid, rid, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, rev)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	pid, rid, ok := reviewIDs(w, r)
	if !ok {
		return
	}

	if _, err := s.Service.DeleteReview(pid, rid); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteMessage(w, http.StatusOK, "Review deleted successfully")
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", nil)
	case errors.Is(err, ErrReviewNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "Review not found", nil)
	case errors.Is(err, recordstore.ErrIdentityMismatch):
		s.Log.Error("record identity mismatch", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	default:
		s.Log.Error("catalog request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id", map[string]any{name: raw})
		return 0, false
	}
	return id, true
}

func reviewIDs(w http.ResponseWriter, r *http.Request) (pid, rid int, ok bool) {
	if pid, ok = pathID(w, r, "id"); !ok {
		return 0, 0, false
	}
	if rid, ok = pathID(w, r, "rid"); !ok {
		return 0, 0, false
	}
	return pid, rid, true
}

func user(r *http.Request) string {
	u, _ := auth.UserFromContext(r.Context())
	return u
}
