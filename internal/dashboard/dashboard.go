// internal/dashboard/dashboard.go
package dashboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
)

// Service exposes the aggregate counts shown on the dashboard.
type Service interface {
	TotalMembers(ctx context.Context) (int, error)
}

type service struct {
	db *sql.DB
}

// NewService creates a new dashboard service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

func (s *service) TotalMembers(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member_information").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleTotal serves the total member count.
func (h *Handler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalMembers(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"totalMembers": total})
}
