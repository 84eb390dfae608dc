package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdin is shared so buffered input survives across prompts.
var stdin = bufio.NewReader(os.Stdin)

// Prompt asks the user for input with a prompt message. It returns io.EOF once
// input is exhausted.
func Prompt(message string) (string, error) {
	fmt.Fprintf(os.Stdout, "%s ", message)
	input, err := stdin.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		return "", err
	}
	return strings.TrimSpace(input), nil
}
