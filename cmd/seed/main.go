package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/config"
	"github.com/helio-health/patient-sync/internal/redisclient"
	"github.com/helio-health/patient-sync/internal/store"
)

type documentWriter interface {
	Save(ctx context.Context, records []appointment.Record) error
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	count := flag.Int("count", 6, "appointments to generate for the configured patient")
	others := flag.Int("others", 4, "appointments to generate for other patients")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var writer documentWriter
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer rdb.Close()
		writer = store.NewRedisStore(rdb, cfg.DocumentKey)
	default:
		writer = store.NewFileStore(cfg.DocumentPath)
	}

	gofakeit.Seed(time.Now().UnixNano())

	records := make([]appointment.Record, 0, *count+*others)
	for i := 0; i < *count; i++ {
		records = append(records, fakeAppointment(cfg.PatientName, i))
	}
	for i := 0; i < *others; i++ {
		records = append(records, fakeAppointment(gofakeit.Name(), *count+i))
	}

	if err := writer.Save(ctx, records); err != nil {
		log.Fatalf("write document: %v", err)
	}

	log.Printf("seed complete: %d appointments (%d for %q)", len(records), *count, cfg.PatientName)
}

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Medicine",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
}

// fakeAppointment spreads appointments over the coming days using the
// portal's 12-hour clock format.
func fakeAppointment(patientName string, n int) appointment.Record {
	day := time.Now().AddDate(0, 0, 1+n%7)
	hour := 9 + gofakeit.Number(0, 7) // 9 AM through 4 PM
	period := "AM"
	display := hour
	if hour >= 12 {
		period = "PM"
		if hour > 12 {
			display = hour - 12
		}
	}

	status := appointment.StatusScheduled
	if gofakeit.Number(0, 4) == 0 {
		status = appointment.StatusCompleted
	}

	return appointment.Record{
		ID:          uuid.New().String(),
		PatientID:   uuid.New().String(),
		PatientName: patientName,
		DoctorID:    fmt.Sprintf("%d", gofakeit.Number(1, 20)),
		DoctorName:  "Dr. " + gofakeit.Name(),
		Specialty:   specialties[gofakeit.Number(0, len(specialties)-1)],
		Date:        day.Format("2006-01-02"),
		Time:        fmt.Sprintf("%02d:%02d %s", display, gofakeit.Number(0, 3)*15, period),
		Status:      status,
	}
}
