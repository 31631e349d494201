package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"drivesim/engine/internal/input"
)

const intentSchemaVersion = "drivesim.intent.v1"

var (
	errIntentEmptyPayload   = errors.New("empty intent payload")
	errIntentMissingID      = errors.New("intent missing vehicle id")
	errIntentMissingVersion = errors.New("intent missing schema version")
	errIntentSequence       = errors.New("intent sequence out of order")
)

// intentPayload mirrors the JSON layout of client control frames.
type intentPayload struct {
	SchemaVersion string  `json:"schema_version"`
	VehicleID     string  `json:"vehicle_id"`
	SequenceID    uint64  `json:"sequence_id"`
	Throttle      float64 `json:"throttle"`
	Brake         float64 `json:"brake"`
	Steer         float64 `json:"steer"`
}

// decodeIntentPayload parses a websocket frame into a structured payload.
func decodeIntentPayload(raw []byte) (*intentPayload, error) {
	if len(raw) == 0 {
		return nil, errIntentEmptyPayload
	}
	var payload intentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// validateIntentPayload enforces required metadata on the payload.
func validateIntentPayload(payload *intentPayload) error {
	if payload == nil {
		return errors.New("intent payload is nil")
	}
	if payload.SchemaVersion == "" {
		return errIntentMissingVersion
	}
	if payload.SchemaVersion != intentSchemaVersion {
		return fmt.Errorf("unsupported intent schema %q", payload.SchemaVersion)
	}
	if payload.VehicleID == "" {
		return errIntentMissingID
	}
	if payload.SequenceID == 0 {
		return fmt.Errorf("intent sequence id must be positive: %d", payload.SequenceID)
	}
	return nil
}

// intentRouter validates incoming control frames and feeds accepted controls
// into the per-vehicle input store.
type intentRouter struct {
	mu        sync.Mutex
	store     *input.Store
	validator *input.Validator
	limiter   *input.RateLimiter
	lastSeqs  map[string]uint64
	logger    zerolog.Logger
}

func newIntentRouter(store *input.Store, validator *input.Validator, logger zerolog.Logger) *intentRouter {
	return &intentRouter{
		store:     store,
		validator: validator,
		limiter:   input.NewRateLimiter(time.Second, 240, nil),
		lastSeqs:  make(map[string]uint64),
		logger:    logger.With().Str("component", "intents").Logger(),
	}
}

// Ingest decodes, validates, sequences, and stores one intent frame.
func (r *intentRouter) Ingest(subject string, raw []byte) error {
	if r == nil {
		return errors.New("intent router is nil")
	}
	if !r.limiter.Allow(subject) {
		return fmt.Errorf("intent rate limit exceeded for %q", subject)
	}
	payload, err := decodeIntentPayload(raw)
	if err != nil {
		return err
	}
	if err := validateIntentPayload(payload); err != nil {
		return err
	}

	controls := input.Controls{Throttle: payload.Throttle, Brake: payload.Brake, Steer: payload.Steer}
	if r.validator != nil {
		//1.- Apply range and delta checks before any state mutation.
		decision := r.validator.Validate(payload.VehicleID, controls)
		if !decision.Accepted {
			return fmt.Errorf("intent validation rejected: %s", decision.Reason)
		}
	}

	r.mu.Lock()
	//2.- Enforce monotonic sequence ids per vehicle so reordered frames
	// cannot roll controls backwards.
	if last := r.lastSeqs[payload.VehicleID]; payload.SequenceID <= last {
		r.mu.Unlock()
		return fmt.Errorf("%w: got %d, last %d", errIntentSequence, payload.SequenceID, last)
	}
	r.lastSeqs[payload.VehicleID] = payload.SequenceID
	r.mu.Unlock()

	//3.- Persist the accepted frame for the controller's next poll.
	r.store.Set(payload.VehicleID, controls)
	if r.validator != nil {
		r.validator.Commit(payload.VehicleID, controls)
	}
	r.logger.Debug().Str("subject", subject).Str("vehicle_id", payload.VehicleID).Uint64("sequence_id", payload.SequenceID).Msg("intent accepted")
	return nil
}
