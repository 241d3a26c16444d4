package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/database"
	"github.com/lingua-prep/adaptive-exam-engine/internal/logger"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
)

// seedQuestion is one entry of the question bank file.
type seedQuestion struct {
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	Level          model.Level     `json:"level"`
	Topic          string          `json:"topic"`
	Text           string          `json:"text"`
	Options        json.RawMessage `json:"options"`
	CorrectOption  string          `json:"correct_option"`
	IsRecording    bool            `json:"is_recording"`
	AudioURL       *string         `json:"audio_url,omitempty"`
}

func main() {
	var (
		file          string
		demoCandidate bool
	)
	flag.StringVar(&file, "file", "questions.json", "Path to the question bank JSON file")
	flag.BoolVar(&demoCandidate, "demo-candidate", false, "Also create demo@example.com / demo-password")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read question bank")
	}

	var bank []seedQuestion
	if err := json.Unmarshal(raw, &bank); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse question bank")
	}

	fmt.Printf("=== Seeding %d Questions ===\n", len(bank))

	inserted := 0
	for i, q := range bank {
		if !q.Level.Valid() {
			log.Warn().Int("index", i).Str("level", string(q.Level)).Msg("Skipping question with invalid level")
			continue
		}

		_, err := pool.Exec(ctx,
			`INSERT INTO questions (organization_id, level, topic, question_text, options, correct_option, is_recording, audio_url, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			q.OrganizationID, q.Level, q.Topic, q.Text, q.Options, q.CorrectOption, q.IsRecording, q.AudioURL, i,
		)
		if err != nil {
			log.Error().Err(err).Int("index", i).Msg("Insert failed")
			continue
		}
		inserted++
	}

	fmt.Printf("Inserted %d/%d questions\n", inserted, len(bank))

	if demoCandidate {
		authService := service.NewAuthService(cfg, nil)
		hash, err := authService.HashPassword("demo-password")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash demo password")
		}

		_, err = pool.Exec(ctx,
			`INSERT INTO candidates (name, email, password_hash)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (email) DO NOTHING`,
			"Demo Candidate", "demo@example.com", hash,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo candidate")
		}
		fmt.Println("Demo candidate ready: demo@example.com / demo-password")
	}
}
