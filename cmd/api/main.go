package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/finly/finance-service/internal/config"
	"github.com/finly/finance-service/internal/handler"
	"github.com/finly/finance-service/internal/integrations/facerec"
	"github.com/finly/finance-service/internal/middleware"
	"github.com/finly/finance-service/internal/repository"
	"github.com/finly/finance-service/internal/service"
	"github.com/finly/finance-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	faceClient := facerec.NewClient(cfg)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, faceClient, mailer, logger, cfg)
	h := handler.NewHandler(svc)

	// Schedule the overdue sweep
	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, func() {
		swept, err := svc.SweepOverdueInstallments()
		if err != nil {
			logger.Errorf("Overdue sweep failed: %v", err)
			return
		}
		if swept > 0 {
			if err := svc.NotifyOverdue(); err != nil {
				logger.Errorf("Failed to notify overdue users: %v", err)
			}
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule overdue sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware)
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/face/register", h.RegisterFace).Methods("POST")
	r.HandleFunc("/face/login", h.LoginFace).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/users", h.ListUsers).Methods("GET")
	authRouter.HandleFunc("/users/{userId}", h.GetUser).Methods("GET")
	authRouter.HandleFunc("/users/{userId}", h.UpdateUser).Methods("PUT")
	authRouter.HandleFunc("/users/{userId}", h.DeleteUser).Methods("DELETE")
	authRouter.HandleFunc("/users/{userId}/incomes", h.CreateIncome).Methods("POST")
	authRouter.HandleFunc("/users/{userId}/incomes", h.ListIncomes).Methods("GET")
	authRouter.HandleFunc("/incomes/kind/{kind}", h.ListIncomesByKind).Methods("GET")
	authRouter.HandleFunc("/incomes/{id}", h.UpdateIncome).Methods("PUT")
	authRouter.HandleFunc("/incomes/{id}", h.DeleteIncome).Methods("DELETE")
	authRouter.HandleFunc("/users/{userId}/expenses", h.CreateExpense).Methods("POST")
	authRouter.HandleFunc("/users/{userId}/expenses", h.ListExpenses).Methods("GET")
	authRouter.HandleFunc("/expenses/kind/{kind}", h.ListExpensesByKind).Methods("GET")
	authRouter.HandleFunc("/expenses/{id}", h.UpdateExpense).Methods("PUT")
	authRouter.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods("DELETE")
	authRouter.HandleFunc("/users/{userId}/summary", h.Summary).Methods("GET")
	authRouter.HandleFunc("/users/{userId}/goals", h.CreateGoal).Methods("POST")
	authRouter.HandleFunc("/users/{userId}/goals", h.ListGoals).Methods("GET")
	authRouter.HandleFunc("/users/{userId}/goals/active", h.ListActiveGoals).Methods("GET")
	authRouter.HandleFunc("/users/{userId}/savings-suggestion", h.SuggestGoal).Methods("GET")
	authRouter.HandleFunc("/goals/{goalId}", h.GoalDetail).Methods("GET")
	authRouter.HandleFunc("/goals/{goalId}", h.CancelGoal).Methods("DELETE")
	authRouter.HandleFunc("/goals/{goalId}/installments/{installmentId}/pay", h.PayInstallment).Methods("POST")
	authRouter.HandleFunc("/goals/sweep-overdue", h.SweepOverdue).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
