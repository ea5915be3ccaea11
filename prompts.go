package main

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"book-manager/catalog"
)

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// fieldPrompt describes how one form field is collected at the terminal.
type fieldPrompt struct {
	name        string
	label       string
	secret      bool // read masked via readPassword
	checkbox    bool // y/N answer stored as "true"/"false"
	keepCurrent bool // empty input keeps the field's current value
}

// promptForm fills the listed fields in order, re-prompting until each one
// passes its validation rules.
func promptForm(sc *bufio.Scanner, form *catalog.Form, prompts []fieldPrompt) error {
	for _, p := range prompts {
		for {
			value, err := promptValue(sc, form, p)
			if err != nil {
				return err
			}
			form.Set(p.name, value)
			if msg, bad := form.Error(p.name); bad {
				fmt.Printf("  %s\n", msg)
				continue
			}
			break
		}
	}
	return nil
}

func promptValue(sc *bufio.Scanner, form *catalog.Form, p fieldPrompt) (string, error) {
	label := p.label
	if p.keepCurrent {
		if current := form.Value(p.name); current != "" {
			label = fmt.Sprintf("%s [%s]", label, current)
		}
	}

	if p.secret {
		return readPassword(label + ": ")
	}
	if p.checkbox {
		if promptYesNo(sc, label) {
			return "true", nil
		}
		return "false", nil
	}

	fmt.Print(label + ": ")
	if !sc.Scan() {
		return "", fmt.Errorf("input closed")
	}
	value := strings.TrimSpace(sc.Text())
	if value == "" && p.keepCurrent {
		return form.Value(p.name), nil
	}
	return value, nil
}

func promptYesNo(sc *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt + " [y/N]: ")
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func promptLine(sc *bufio.Scanner, prompt string) (string, bool) {
	fmt.Print(prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}
