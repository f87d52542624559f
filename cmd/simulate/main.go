package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/logger"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	CreateRatio  float64
	StatusRatio  float64
	ListRatio    float64
	DeleteRatio  float64
	BootstrapMin int
}

type Simulator struct {
	config  SimConfig
	log     zerolog.Logger
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	_ = godotenv.Load()
	env := getEnv("APP_ENV", "development")
	log := logger.New(env == "development" || env == "dev", getEnv("LOG_LEVEL", "info"))

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("create", cfg.CreateRatio).
		Float64("status", cfg.StatusRatio).
		Float64("list", cfg.ListRatio).
		Float64("delete", cfg.DeleteRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		log:    log,
		pool:   &DataPool{},
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sim.loadDataPool(ctx); err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}
	log.Info().Int("patients", len(sim.pool.Patients)).Int("doctors", len(sim.pool.Doctors)).Msg("data pool loaded")

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:3000"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		CreateRatio:  getFloat("SIM_CREATE_RATIO", 0.4),
		StatusRatio:  getFloat("SIM_STATUS_RATIO", 0.3),
		ListRatio:    getFloat("SIM_LIST_RATIO", 0.2),
		DeleteRatio:  getFloat("SIM_DELETE_RATIO", 0.1),
		BootstrapMin: getInt("SIM_BOOTSTRAP_MIN", 20),
	}

	total := cfg.CreateRatio + cfg.StatusRatio + cfg.ListRatio + cfg.DeleteRatio
	if total > 0 {
		cfg.CreateRatio /= total
		cfg.StatusRatio /= total
		cfg.ListRatio /= total
		cfg.DeleteRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

// loadDataPool reads existing patients and doctors from the API and creates
// fake ones until each list holds at least BootstrapMin entries.
func (s *Simulator) loadDataPool(ctx context.Context) error {
	var patients []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := s.getJSON(ctx, "/api/patients", &patients); err != nil {
		return fmt.Errorf("list patients: %w", err)
	}
	for _, p := range patients {
		s.pool.Patients = append(s.pool.Patients, p.ID)
	}

	var doctors []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := s.getJSON(ctx, "/api/doctors", &doctors); err != nil {
		return fmt.Errorf("list doctors: %w", err)
	}
	for _, d := range doctors {
		s.pool.Doctors = append(s.pool.Doctors, d.ID)
	}

	for len(s.pool.Patients) < s.config.BootstrapMin {
		id, err := s.postForID(ctx, "/api/patients", map[string]string{
			"name":   gofakeit.Name(),
			"dob":    gofakeit.Date().Format("2006-01-02"),
			"gender": []string{"Male", "Female", "Other"}[gofakeit.Number(0, 2)],
			"phone":  gofakeit.Phone(),
		})
		if err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		s.pool.Patients = append(s.pool.Patients, id)
	}

	for len(s.pool.Doctors) < s.config.BootstrapMin {
		id, err := s.postForID(ctx, "/api/doctors", map[string]string{
			"name":      "Dr. " + gofakeit.Name(),
			"specialty": gofakeit.JobTitle(),
		})
		if err != nil {
			return fmt.Errorf("create doctor: %w", err)
		}
		s.pool.Doctors = append(s.pool.Doctors, id)
	}

	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.CreateRatio:
				s.doCreate(ctx, rng)
			case r < s.config.CreateRatio+s.config.StatusRatio:
				s.doStatus(ctx, rng)
			case r < s.config.CreateRatio+s.config.StatusRatio+s.config.ListRatio:
				s.doList(ctx)
			default:
				s.doDelete(ctx, rng)
			}
		}
	}
}

func (s *Simulator) doCreate(ctx context.Context, rng *rand.Rand) {
	at := time.Now().AddDate(0, 0, rng.Intn(90)).Truncate(15 * time.Minute)
	body, _ := json.Marshal(map[string]string{
		"patient_id": s.pool.Patients[rng.Intn(len(s.pool.Patients))].String(),
		"doctor_id":  s.pool.Doctors[rng.Intn(len(s.pool.Doctors))].String(),
		"appt_time":  at.Format("2006-01-02T15:04"),
		"reason":     "simulated visit",
	})

	start := time.Now()
	code, respBody, err := s.do(ctx, http.MethodPost, "/api/appointments", body)
	s.metrics.Create.Record(time.Since(start), code, err)

	if err == nil && code == http.StatusCreated {
		var out struct {
			ID uuid.UUID `json:"id"`
		}
		if json.Unmarshal(respBody, &out) == nil && out.ID != uuid.Nil {
			s.pool.AddAppointment(out.ID)
		}
	}
}

// doStatus may hit an appointment another worker just deleted; that shows
// up as a 404 in the report.
func (s *Simulator) doStatus(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.PickAppointment(rng, false)
	if !ok {
		return
	}
	statuses := []appointment.Status{appointment.StatusCompleted, appointment.StatusCancelled, appointment.StatusScheduled}
	body, _ := json.Marshal(map[string]appointment.Status{"status": statuses[rng.Intn(len(statuses))]})

	start := time.Now()
	code, _, err := s.do(ctx, http.MethodPut, "/api/appointments/"+apptID.String()+"/status", body)
	s.metrics.Status.Record(time.Since(start), code, err)
}

func (s *Simulator) doList(ctx context.Context) {
	start := time.Now()
	code, _, err := s.do(ctx, http.MethodGet, "/api/appointments", nil)
	s.metrics.List.Record(time.Since(start), code, err)
}

func (s *Simulator) doDelete(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.PickAppointment(rng, true)
	if !ok {
		return
	}

	start := time.Now()
	code, _, err := s.do(ctx, http.MethodDelete, "/api/appointments/"+apptID.String(), nil)
	s.metrics.Delete.Record(time.Since(start), code, err)
}

func (s *Simulator) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, r)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}

func (s *Simulator) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (s *Simulator) postForID(ctx context.Context, path string, payload any) (uuid.UUID, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printSummary("Create", s.metrics.Create.Summary())
	printSummary("Update status", s.metrics.Status.Summary())
	printSummary("List", s.metrics.List.Summary())
	printSummary("Delete", s.metrics.Delete.Summary())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
