// Package parser extracts front/back flashcards from markdown notes.
//
// A card starts with a "Q:" line and its back with an "A:" line. Either block may
// continue over several lines. An optional "C:" block adds context, which is
// appended to the back. A line of "---" ends the current card.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	frontPrefix   = "Q:"
	backPrefix    = "A:"
	contextPrefix = "C:"
	separator     = "---"
)

// Entry is a parsed card before it is added to a stack.
type Entry struct {
	Front   string
	Back    string
	Context string
}

// BackWithContext returns the back text with any context appended in parentheses.
func (e Entry) BackWithContext() string {
	if e.Context == "" {
		return e.Back
	}
	if e.Back == "" {
		return "(" + e.Context + ")"
	}
	return e.Back + "\n(" + e.Context + ")"
}

type state int

const (
	seeking state = iota
	readingFront
	readingBack
	readingContext
)

// ParseFile reads a file from the given path and extracts all entries.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all entries. Entries without a front are dropped.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current Entry
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimRight(strings.Join(block, "\n"), "\n ")
		switch currentState {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		case readingContext:
			current.Context = content
		}
		block = nil
	}

	finishEntry := func() {
		flushBlock()
		if current.Front != "" {
			entries = append(entries, current)
		}
		current = Entry{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishEntry()
			continue
		}

		prefix, next := "", seeking
		switch {
		case strings.HasPrefix(line, frontPrefix):
			prefix, next = frontPrefix, readingFront
		case strings.HasPrefix(line, backPrefix):
			prefix, next = backPrefix, readingBack
		case strings.HasPrefix(line, contextPrefix):
			prefix, next = contextPrefix, readingContext
		}

		if next == seeking {
			if currentState != seeking {
				block = append(block, line)
			}
			continue
		}

		if next == readingFront && currentState != seeking {
			// A new question always starts a new card.
			finishEntry()
		} else {
			flushBlock()
		}
		currentState = next
		block = append(block, strings.TrimPrefix(line[len(prefix):], " "))
	}

	finishEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
