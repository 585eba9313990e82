// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package menu

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhPrompter renders prompts as huh forms
type HuhPrompter struct {
	accessible bool
}

// NewHuhPrompter returns a prompter. Accessible mode swaps the TUI for plain
// line prompts, for screen readers and dumb terminals.
func NewHuhPrompter(accessible bool) *HuhPrompter {
	return &HuhPrompter{accessible: accessible}
}

func (p *HuhPrompter) Choose(title string, options []Option) (string, error) {
	var choice string

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Key+" -> "+o.Label, o.Key))
	}

	err := p.run(huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&choice))
	return choice, err
}

func (p *HuhPrompter) Input(title, placeholder string) (string, error) {
	var value string
	err := p.run(huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value))
	return value, err
}

func (p *HuhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := p.run(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok))
	return ok, err
}

func (p *HuhPrompter) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
