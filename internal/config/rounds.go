package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/interview-simulator/internal/types"
)

// Round describes the presentation of one interviewer role.
type Round struct {
	Kind            types.RoundKind `yaml:"kind"`
	Name            string          `yaml:"name"`
	FollowUpEnabled bool            `yaml:"follow_up_enabled"`
}

// Rounds is the YAML-backed interview round configuration: the target
// position and the display settings per round. Round order and weights are
// fixed by the engine; the file only customizes presentation and whether a
// round may ask follow-ups.
type Rounds struct {
	Position string  `yaml:"position"`
	Rounds   []Round `yaml:"rounds"`
}

// DefaultRounds returns the built-in round configuration.
func DefaultRounds() *Rounds {
	return &Rounds{
		Position: "Data Analyst",
		Rounds: []Round{
			{Kind: types.RoundHR, Name: "HR Screen", FollowUpEnabled: true},
			{Kind: types.RoundHiringManager, Name: "Hiring Manager Interview", FollowUpEnabled: true},
			{Kind: types.RoundTechnical, Name: "Technical Interview", FollowUpEnabled: true},
			{Kind: types.RoundCultureFit, Name: "Culture Fit Interview", FollowUpEnabled: true},
			{Kind: types.RoundCommittee, Name: "Hiring Committee Review"},
		},
	}
}

// LoadRounds reads the YAML round configuration from path. An empty path
// returns the defaults.
func LoadRounds(path string) (*Rounds, error) {
	if path == "" {
		return DefaultRounds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rounds file %s: %w", path, err)
	}

	var r Rounds
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rounds YAML: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the round configuration for unknown or duplicate kinds.
func (r *Rounds) Validate() error {
	seen := make(map[types.RoundKind]bool)
	for _, round := range r.Rounds {
		if !round.Kind.Valid() {
			return fmt.Errorf("rounds config error: unknown round kind %q", round.Kind)
		}
		if seen[round.Kind] {
			return fmt.Errorf("rounds config error: duplicate round kind %q", round.Kind)
		}
		seen[round.Kind] = true
	}
	return nil
}

// DisplayName returns the configured name for a round kind, falling back to
// the kind itself.
func (r *Rounds) DisplayName(kind types.RoundKind) string {
	for _, round := range r.Rounds {
		if round.Kind == kind && round.Name != "" {
			return round.Name
		}
	}
	return string(kind)
}

// FollowUpEnabled reports whether a round may issue follow-up questions.
func (r *Rounds) FollowUpEnabled(kind types.RoundKind) bool {
	for _, round := range r.Rounds {
		if round.Kind == kind {
			return round.FollowUpEnabled
		}
	}
	return false
}
