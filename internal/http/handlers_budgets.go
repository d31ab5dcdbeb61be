package http

import (
	"net/http"

	"financetracker/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"categories": newCategoryViews(cats)}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	c, err := s.deps.Categories.Create(r.Context(), userID(r), ParseCategory(p))
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(map[string]any{
		"message":  "Category created successfully!",
		"category": newCategoryView(c),
	}).Write(w)
}

// handleListBudgets reports each budget with its spending over the current
// window of its own period.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Budgets.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"budgets": newUtilizationViews(budgets)}).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	b, err := ParseBudget(p)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.deps.Budgets.Create(r.Context(), userID(r), b)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Budget created",
		log.FieldBudgetID, saved.ID,
		log.FieldCategory, saved.CategoryName,
		log.FieldPeriod, saved.Period)
	NewJSONResponse().Status(http.StatusCreated).Body(map[string]any{
		"message": "Budget created successfully!",
		"budget":  newBudgetView(saved),
	}).Write(w)
}
