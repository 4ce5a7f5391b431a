package products

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FoodReview/pkg/kit"
)

type Server struct {
	Repo     *Repository
	Reloader *Reloader
	Log      *zap.Logger

	// ReloadLimiter throttles reload requests per client; nil disables it.
	ReloadLimiter *kit.IPRateLimiter
}

type healthResponse struct {
	Status string `json:"status"`
}

type productsListResponse struct {
	AvailableProducts []string `json:"available_products"`
}

type productsMetadataResponse struct {
	Products Descriptor `json:"products"`
}

type reviewsResponse struct {
	Reviews []Review `json:"reviews"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, healthResponse{Status: "OK"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		stats, ok := s.Repo.Stats()
		if !ok {
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not loaded")
			return
		}
		kit.WriteJSON(w, http.StatusOK, stats)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", s.listProducts)
		r.Get("/products/most_reviewed", s.ranked(s.Repo.MostCommented))
		r.Get("/products/least_reviewed", s.ranked(s.Repo.LeastCommented))

		reload := r.With()
		if s.ReloadLimiter != nil {
			reload = r.With(s.ReloadLimiter.Middleware)
		}
		reload.Get("/products/reload", s.reload)

		r.Get("/reviews", s.reviews)
	})

	return r
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, productsListResponse{AvailableProducts: s.Repo.AvailableProducts()})
}

func (s *Server) ranked(query func(n int) ([]ProductCount, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.URL.Query().Get("n"))
		if err != nil || n <= 0 {
			kit.WriteError(w, r, http.StatusUnprocessableEntity, "query parameter 'n' must be an integer greater than 0")
			return
		}

		counts, err := query(n)
		if errors.Is(err, ErrRepositoryEmpty) {
			s.logger().Warn("ranking requested before products were loaded", zap.String("path", r.URL.Path))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not loaded")
			return
		}
		if err != nil {
			s.logger().Error("ranking products failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error")
			return
		}
		kit.WriteJSON(w, http.StatusOK, counts)
	}
}

func (s *Server) reload(w http.ResponseWriter, _ *http.Request) {
	s.logger().Info("triggering product reload")
	id := s.Reloader.Trigger()

	w.Header().Set("X-Reload-ID", id)
	kit.WriteJSON(w, http.StatusOK, productsMetadataResponse{Products: s.Reloader.Source()})
}

func (s *Server) reviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("product_id") {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "query parameter 'product_id' is required")
		return
	}
	id := q.Get("product_id")

	p, err := s.Repo.Get(id)
	if errors.Is(err, ErrProductNotFound) {
		msg := fmt.Sprintf("Product with key '%s' not loaded in the service.", id)
		s.logger().Warn(msg)
		kit.WriteError(w, r, http.StatusNotFound, msg)
		return
	}
	if err != nil {
		s.logger().Error("get product failed", zap.Error(err), zap.String("product_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	kit.WriteJSON(w, http.StatusOK, reviewsResponse{Reviews: p.Reviews})
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
