package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR    OCRConfig
	Batch  BatchConfig
	Report ReportConfig
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"

	DPI             int // rasterization DPI for scanned PDFs, default 300
	MaxPages        int // 0 = no limit
	SparseThreshold int // embedded text below this many chars triggers OCR fallback, default 100
}

// BatchConfig holds orchestrator configuration
type BatchConfig struct {
	ReviewDir string // holding area for needs-review text dumps
	LockedDir string // holding area for locked-file copies
	PausePoll time.Duration
	QueueSize int // progress channel buffer
}

// ReportConfig holds report emission configuration
type ReportConfig struct {
	OutputPath   string
	TemplatePath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftotext:       getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:        getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:       getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:   getEnv("TESSERACT_LANG", "eng"),
			DPI:             getEnvAsInt("OCR_DPI", 300),
			MaxPages:        getEnvAsInt("OCR_MAX_PAGES", 0),
			SparseThreshold: getEnvAsInt("SPARSE_TEXT_THRESHOLD", 100),
		},
		Batch: BatchConfig{
			ReviewDir: getEnv("REVIEW_DIR", "./review"),
			LockedDir: getEnv("LOCKED_DIR", "./locked"),
			PausePoll: getEnvAsDuration("PAUSE_POLL_INTERVAL", 200*time.Millisecond),
			QueueSize: getEnvAsInt("PROGRESS_QUEUE_SIZE", 256),
		},
		Report: ReportConfig{
			OutputPath:   getEnv("REPORT_OUT", ""),
			TemplatePath: getEnv("REPORT_TEMPLATE", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
