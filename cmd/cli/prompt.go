package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/smartspace/smartspace/pkg/domain"
)

var errNotInteractive = errors.New("no terminal available for prompts")

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// confirm asks a yes/no question; skip answers yes without asking
func confirm(title string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	if !interactive() {
		return false, fmt.Errorf("%w: pass --yes to confirm", errNotInteractive)
	}

	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}

	return confirmed, nil
}

// chooseUser lets the user pick one of several directory matches
func chooseUser(query string, users []domain.User) (domain.User, error) {
	if !interactive() {
		return domain.User{}, fmt.Errorf("%w: %q matches %d users", errNotInteractive, query, len(users))
	}

	options := make([]huh.Option[int], 0, len(users))
	for i, user := range users {
		label := user.DisplayName
		if user.Mail != "" {
			label += " <" + user.Mail + ">"
		}
		options = append(options, huh.NewOption(label, i))
	}

	var selected int
	err := huh.NewSelect[int]().
		Title(fmt.Sprintf("Who is %q?", query)).
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return domain.User{}, err
	}

	return users[selected], nil
}
