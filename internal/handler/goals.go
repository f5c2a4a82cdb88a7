package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/finly/finance-service/internal/models"
)

type createGoalRequest struct {
	Name             string  `json:"name"`
	TargetAmount     float64 `json:"target_amount"`
	InstallmentCount int     `json:"installment_count"`
	Cadence          string  `json:"cadence"`
	BalancePercent   float64 `json:"balance_percent"`
}

// CreateGoal creates a savings goal with its installment schedule
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	detail, err := h.svc.CreateGoal(userID, req.Name, req.TargetAmount, req.InstallmentCount,
		models.Cadence(req.Cadence), req.BalancePercent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// ListGoals lists all savings goals of a user
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	goals, err := h.svc.ListGoals(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// ListActiveGoals lists a user's active savings goals
func (h *Handler) ListActiveGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	goals, err := h.svc.ListActiveGoals(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// GoalDetail returns the aggregated view of a savings goal
func (h *Handler) GoalDetail(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "goalId")
	if err != nil {
		http.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}
	detail, err := h.svc.GetGoalDetail(goalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// PayInstallment pays one installment of a savings goal
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "goalId")
	if err != nil {
		http.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}
	installmentID, err := pathID(r, "installmentId")
	if err != nil {
		http.Error(w, "Invalid installment id", http.StatusBadRequest)
		return
	}
	goal, err := h.svc.PayInstallment(goalID, installmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	detail, err := h.svc.GetGoalDetail(goal.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Installment paid",
		"goal":    detail,
	})
}

// CancelGoal cancels a savings goal
func (h *Handler) CancelGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "goalId")
	if err != nil {
		http.Error(w, "Invalid goal id", http.StatusBadRequest)
		return
	}
	if err := h.svc.CancelGoal(goalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Goal cancelled"})
}

// SuggestGoal computes a savings suggestion from the user's balance.
// Nothing is persisted; the response is a preview only.
func (h *Handler) SuggestGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	percent := queryFloat(r, "balance_percent", 20)
	count := queryInt(r, "installment_count", 12)
	cadence := models.Cadence(r.URL.Query().Get("cadence"))

	suggestion, err := h.svc.SuggestGoal(userID, percent, count, cadence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Savings suggestion calculated",
		"suggestion": suggestion,
		"note":       "This is a suggestion. Create the goal with these values or adjust them.",
	})
}

// SweepOverdue transitions past-due pending installments to overdue
func (h *Handler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	swept, err := h.svc.SweepOverdueInstallments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Overdue installments updated",
		"swept":   swept,
	})
}

func queryFloat(r *http.Request, name string, def float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
