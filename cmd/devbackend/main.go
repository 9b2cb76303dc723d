// Command devbackend serves an in-memory clinic REST API with fake data so
// the portal can run without the real backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/logging"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return def
}

func main() {
	_ = godotenv.Load()

	log := logging.New(getEnv("APP_ENV", "dev"))

	gofakeit.Seed(time.Now().UnixNano())

	st := newStore()
	demoPatient := clinic.Patient{
		Name:     "Demo Patient",
		Email:    getEnv("DEV_PATIENT_EMAIL", "patient@example.com"),
		Password: getEnv("DEV_PATIENT_PASSWORD", "patient123"),
		Phone:    "555-0100",
		Address:  "1 Main Street",
	}
	demoDoctor := clinic.Doctor{
		Name:         "Dr. Demo",
		Email:        getEnv("DEV_DOCTOR_EMAIL", "doctor@example.com"),
		Password:     getEnv("DEV_DOCTOR_PASSWORD", "doctor123"),
		Specialty:    "General",
		Availability: []string{"09:00-10:00", "10:00-11:00", "14:00-15:00"},
	}
	st.seed(getInt("DEV_DOCTORS", 25), getInt("DEV_PATIENTS", 50), demoPatient, demoDoctor)

	srv := &server{
		store:  st,
		tokens: tokens{secret: []byte(getEnv("DEV_JWT_SECRET", "dev-backend-secret"))},
		admin: credentials{
			Username: getEnv("DEV_ADMIN_USERNAME", "admin"),
			Password: getEnv("DEV_ADMIN_PASSWORD", "admin123"),
		},
		log: log,
	}

	httpSrv := &http.Server{
		Addr:              ":" + getEnv("DEV_BACKEND_PORT", "8080"),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    httpSrv.Addr,
			"doctors": len(st.doctors),
		}).Info("dev backend listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info("dev backend stopped")
}
