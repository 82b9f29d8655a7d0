// Package config provides prompt template loading utilities.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the instruction templates sent to the completion service.
// Placeholders use {name} markers substituted by the usecases.
type Prompts struct {
	// Intent extracts the five-field job intent from one utterance.
	// Placeholders: {user_input}
	Intent string `yaml:"intent"`
	// Followup asks one clarifying question for the missing fields.
	// Placeholders: {missing_fields}, {current_intent}
	Followup string `yaml:"followup"`
	// RerankIndex asks for a JSON array of {rank, job_number, reason}.
	// Placeholders: {intent}, {jobs}, {top_n}
	RerankIndex string `yaml:"rerank_index"`
	// RerankMatch asks for a JSON array of {rank, title, company, reason}.
	// Placeholders: {intent}, {jobs}, {top_n}
	RerankMatch string `yaml:"rerank_match"`
}

// DefaultPrompts returns the built-in prompt templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Intent: `Extract the job search intent from the user's message.

User message: {user_input}

Return ONLY a JSON object with exactly these keys:
{
  "role": "job title or position, or null",
  "location": "desired job location, or null",
  "salary": "expected salary, or null",
  "domain": "industry or domain like healthcare, startup, or null",
  "remote": "'yes', 'no', or 'hybrid', or null"
}
Use null for anything the message does not state. Return only the JSON object, no other text.`,
		Followup: `You are a helpful job-search assistant. The user's request is missing: {missing_fields}.

What we know so far: {current_intent}

Ask ONE short, friendly question that gathers the missing information. Return only the question.`,
		RerankIndex: `You are a job matching expert. Given the user's preferences: {intent}

Here are the job candidates:
{jobs}

Select the TOP {top_n} jobs that best match the user's requirements. Consider role fit, location match, company quality, and overall alignment.

Return ONLY a JSON array with this format:
[
  {"rank": 1, "job_number": 5, "reason": "Perfect role match and location fit"},
  {"rank": 2, "job_number": 12, "reason": "Strong company with relevant experience"}
]
Return only the JSON array, no other text.`,
		RerankMatch: `You are a job matching expert. Given the user's preferences: {intent}

Here are the job candidates:
{jobs}

Select the TOP {top_n} jobs that best match the user's requirements. Consider role fit, location match, company quality, and overall alignment.

Return ONLY a JSON array with this format:
[
  {"rank": 1, "title": "Senior Data Analyst", "company": "Acme", "reason": "Perfect role match"},
  {"rank": 2, "title": "Data Analyst", "company": "Globex", "reason": "Location fit"}
]
Return only the JSON array, no other text.`,
	}
}

// LoadPrompts returns the prompt templates, overlaying any non-empty entries
// from the YAML file at path. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}
	// #nosec G304 -- prompt files are operator-provided configuration
	content, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts file: %w", err)
	}
	var override Prompts
	if err := yaml.Unmarshal(content, &override); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts file: %w", err)
	}
	if override.Intent != "" {
		prompts.Intent = override.Intent
	}
	if override.Followup != "" {
		prompts.Followup = override.Followup
	}
	if override.RerankIndex != "" {
		prompts.RerankIndex = override.RerankIndex
	}
	if override.RerankMatch != "" {
		prompts.RerankMatch = override.RerankMatch
	}
	return prompts, nil
}
