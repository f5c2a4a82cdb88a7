package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type entryRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Kind   string  `json:"kind"`
}

// CreateIncome records an income entry for a user
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	income, err := h.svc.AddIncome(userID, req.Name, req.Amount, req.Kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, income)
}

// ListIncomes lists a user's income entries
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	incomes, err := h.svc.ListIncomes(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incomes)
}

// ListIncomesByKind lists income entries of one kind across all users
func (h *Handler) ListIncomesByKind(w http.ResponseWriter, r *http.Request) {
	incomes, err := h.svc.ListIncomesByKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, incomes)
}

// UpdateIncome replaces an income entry's fields
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid income id", http.StatusBadRequest)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	income, err := h.svc.UpdateIncome(id, req.Name, req.Amount, req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

// DeleteIncome removes an income entry
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid income id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteIncome(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Income deleted"})
}

// CreateExpense records an expense entry for a user
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense, err := h.svc.AddExpense(userID, req.Name, req.Amount, req.Kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// ListExpenses lists a user's expense entries
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	expenses, err := h.svc.ListExpenses(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// ListExpensesByKind lists expense entries of one kind across all users
func (h *Handler) ListExpensesByKind(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpensesByKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// UpdateExpense replaces an expense entry's fields
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid expense id", http.StatusBadRequest)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense, err := h.svc.UpdateExpense(id, req.Name, req.Amount, req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes an expense entry
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid expense id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteExpense(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// Summary returns a user's financial summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.Summary(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
