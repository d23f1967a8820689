package seedr

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gopkg.in/yaml.v3"
)

type GenConfig struct {
	Output    string   `yaml:"output"`
	Seed      int64    `yaml:"seed"`
	Rows      int      `yaml:"rows"`
	Programs  []string `yaml:"programs"`
	StartDate string   `yaml:"startDate"`
	Days      int      `yaml:"days"`
}

func readGenConfig(path string) (GenConfig, error) {
	log.Printf("[DEBUG] Loading config from %s\n", path)
	var cfg GenConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 10
	}
	if len(cfg.Programs) == 0 {
		cfg.Programs = defaultPrograms
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2024-01-01"
	}
	if cfg.Days <= 0 {
		cfg.Days = 365
	}
	return cfg, nil
}

// Gen writes a CSV of synthetic certificate requests in the upload format:
// recipient_address, recipient_name, program, issue_date.
func Gen(configPath *string) {
	cfg, err := readGenConfig(*configPath)
	if err != nil {
		log.Fatalf("[FATAL] Error loading config: %v", err)
	}

	// deterministic data if seed provided
	gofakeit.Seed(cfg.Seed)

	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		log.Fatalf("[FATAL] invalid startDate %q: %v", cfg.StartDate, err)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		log.Fatalf("[FATAL] cannot create output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"recipient_address", "recipient_name", "program", "issue_date"})

	log.Printf("[INFO] Generating %d rows across %d programs", cfg.Rows, len(cfg.Programs))
	for i := 0; i < cfg.Rows; i++ {
		addr := randomAddress()
		name := gofakeit.Name()
		program := cfg.Programs[gofakeit.Number(0, len(cfg.Programs)-1)]
		date := start.AddDate(0, 0, gofakeit.Number(0, cfg.Days-1)).Format("2006-01-02")
		w.Write([]string{addr, name, program, date})

		if (i+1)%1000 == 0 {
			log.Printf("[DEBUG] generated %d rows", i+1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("[FATAL] writing csv: %v", err)
	}

	log.Printf("[INFO] Generation complete: rows=%d output=%s", cfg.Rows, cfg.Output)
	fmt.Printf("CSV file generated: %s\n", cfg.Output)
}

const hexDigits = "0123456789abcdef"

// randomAddress builds a 0x-prefixed 20-byte hex address from the shared
// gofakeit stream so a fixed seed reproduces the whole file.
func randomAddress() string {
	b := make([]byte, 0, 42)
	b = append(b, '0', 'x')
	for i := 0; i < 40; i++ {
		b = append(b, hexDigits[gofakeit.Number(0, 15)])
	}
	return string(b)
}
