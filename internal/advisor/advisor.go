// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package advisor answers free-form questions in the voice of a fixed
// roster of business figures. It sits beside the briefing pipeline and
// shares its completion oracle.
package advisor

import (
	"context"
	"fmt"
	"strings"
)

// MaxPersonasPerAsk bounds how many personas one question fans out to.
const MaxPersonasPerAsk = 4

// Oracle abstracts the generative API so tests can supply a mock.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Answer is one persona's reply. Err is set when that persona's oracle
// call failed; the rest of the panel still answers.
type Answer struct {
	PersonaID  string `json:"persona_id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	AvatarHint string `json:"avatar_hint"`
	Text       string `json:"answer"`
	Err        string `json:"error,omitempty"`
}

// Advisor fans questions out to persona-framed oracle calls.
type Advisor struct {
	oracle Oracle
}

// New builds an advisor over the given oracle.
func New(oracle Oracle) *Advisor {
	return &Advisor{oracle: oracle}
}

// Ask poses the question to each selected persona in order. The question
// must be non-blank and between 1 and MaxPersonasPerAsk known personas
// must be selected; violations return an error before any oracle call.
// An oracle failure for one persona is recorded on that answer and does
// not stop the rest of the panel.
func (a *Advisor) Ask(ctx context.Context, question string, personaIDs []string) ([]Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if len(personaIDs) == 0 {
		return nil, fmt.Errorf("select at least one persona")
	}
	if len(personaIDs) > MaxPersonasPerAsk {
		return nil, fmt.Errorf("at most %d personas per question", MaxPersonasPerAsk)
	}

	selected := make([]Persona, 0, len(personaIDs))
	for _, id := range personaIDs {
		p, ok := personaByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown persona %q", id)
		}
		selected = append(selected, p)
	}

	answers := make([]Answer, 0, len(selected))
	for _, p := range selected {
		answer := Answer{
			PersonaID:  p.ID,
			Name:       p.Name,
			Title:      p.Title,
			AvatarHint: p.AvatarHint,
		}
		text, err := a.oracle.Complete(ctx, p.systemPrompt, question)
		if err != nil {
			answer.Err = err.Error()
		} else {
			answer.Text = strings.TrimSpace(text)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
