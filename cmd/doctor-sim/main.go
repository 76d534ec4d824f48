// doctor-sim plays the doctor's side of the shared appointment document:
// it accepts consultations, opens call invitations, withdraws them and
// completes appointments, following a scripted scenario. Point a running
// sync-agent at the same document to watch the patient side react.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/helio-health/patient-sync/internal/appointment"
	"github.com/helio-health/patient-sync/internal/config"
	"github.com/helio-health/patient-sync/internal/redisclient"
	"github.com/helio-health/patient-sync/internal/store"
)

type Scenario struct {
	Patient string `yaml:"patient"`
	Doctor  struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		Specialty string `yaml:"specialty"`
	} `yaml:"doctor"`
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Action      string `yaml:"action"` // create, accept, invite, withdraw, complete
	Appointment string `yaml:"appointment,omitempty"`
	CallType    string `yaml:"callType,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Time        string `yaml:"time,omitempty"`
	Delay       string `yaml:"delay,omitempty"`
}

type documentStore interface {
	Load(ctx context.Context) ([]appointment.Record, error)
	Save(ctx context.Context, records []appointment.Record) error
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	scenarioPath := flag.String("scenario", "scenario.yaml", "scenario file to play")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	scenario, err := loadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("scenario load error: %v", err)
	}
	if scenario.Patient == "" {
		scenario.Patient = cfg.PatientName
	}

	ctx := context.Background()

	var (
		st     documentStore
		locker redisclient.Locker
		key    string
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer rdb.Close()
		rs := store.NewRedisStore(rdb, cfg.DocumentKey)
		st = rs
		key = rs.Key()
		locker = redisclient.NewRedisDocumentLocker(rdb, 10*time.Second)
	default:
		st = store.NewFileStore(cfg.DocumentPath)
	}

	log.Printf("playing %s against %s backend (patient %q, %d steps)",
		*scenarioPath, cfg.StoreBackend, scenario.Patient, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if step.Delay != "" {
			d, err := time.ParseDuration(step.Delay)
			if err != nil {
				log.Fatalf("step %d: bad delay %q: %v", i+1, step.Delay, err)
			}
			time.Sleep(d)
		}

		apply := func(ctx context.Context) error {
			return applyStep(ctx, st, scenario, step)
		}
		if locker != nil {
			err = locker.WithDocumentLock(ctx, key, apply)
		} else {
			err = apply(ctx)
		}
		if err != nil {
			log.Fatalf("step %d (%s): %v", i+1, step.Action, err)
		}
		log.Printf("step %d: %s done", i+1, step.Action)
	}

	log.Println("scenario complete")
}

func loadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	return &s, nil
}

func applyStep(ctx context.Context, st documentStore, sc *Scenario, step Step) error {
	records, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	switch step.Action {
	case "create":
		records = append(records, appointment.Record{
			ID:          uuid.New().String(),
			PatientName: sc.Patient,
			DoctorID:    sc.Doctor.ID,
			DoctorName:  sc.Doctor.Name,
			Specialty:   sc.Doctor.Specialty,
			Date:        step.Date,
			Time:        step.Time,
			Status:      appointment.StatusScheduled,
		})
	case "accept", "invite", "withdraw", "complete":
		target := findTarget(records, sc.Patient, step.Appointment)
		if target == nil {
			return fmt.Errorf("no appointment for patient %q (id filter %q)", sc.Patient, step.Appointment)
		}
		mutate(target, sc, step)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	if err := st.Save(ctx, records); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func findTarget(records []appointment.Record, patient, id string) *appointment.Record {
	for i := range records {
		if id != "" {
			if records[i].ID == id {
				return &records[i]
			}
			continue
		}
		if records[i].PatientName == patient && !records[i].Terminal() {
			return &records[i]
		}
	}
	return nil
}

func mutate(r *appointment.Record, sc *Scenario, step Step) {
	switch step.Action {
	case "accept":
		r.Status = appointment.StatusInProgress
		if sc.Doctor.ID != "" {
			r.DoctorID = sc.Doctor.ID
		}
		if sc.Doctor.Name != "" {
			r.DoctorName = sc.Doctor.Name
		}
		if sc.Doctor.Specialty != "" {
			r.Specialty = sc.Doctor.Specialty
		}
	case "invite":
		callType := appointment.CallType(step.CallType)
		if callType == "" {
			callType = appointment.CallVideo
		}
		r.Status = appointment.StatusInProgress
		r.CallType = callType
		r.CallSession = uuid.New().String()
	case "withdraw":
		r.CallType = ""
		r.CallSession = ""
	case "complete":
		r.Status = appointment.StatusCompleted
		r.CallType = ""
		r.CallSession = ""
	}
}
