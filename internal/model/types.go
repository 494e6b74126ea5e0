// Package model defines shared data structures.
package model

import "time"

// Config defines resolved correction settings.
type Config struct {
	Layouts    []string
	Canonical  string
	Window     int
	Classifier string
	ModelPath  string
	History    bool
}

// Correction captures one corrected line.
type Correction struct {
	ID         int64
	CreatedAt  time.Time
	Input      string
	Output     string
	Classifier string
	Tokens     []TokenRecord
}

// TokenRecord stores how a single token was corrected.
type TokenRecord struct {
	Position int
	Input    string
	Output   string
	Source   string
	Target   string
}

// LayoutAggregate counts tokens per source/target layout pair.
type LayoutAggregate struct {
	Source  string
	Target  string
	Tokens  int
	Changed int
}
