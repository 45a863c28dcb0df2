// Package pageid turns whatever the user pasted into a page field (a bare page ID, a
// /pages/<id>/Title link, a viewpage.action?pageId=<id> link) into a canonical page ID.
package pageid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PageID is the numeric ID Confluence uses for a piece of content.  Only Resolve hands these out.
type PageID uint64

func (id PageID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

var (
	ErrEmptyInput         = errors.New("pageid: no page given")
	ErrUnrecognizedFormat = errors.New("pageid: unrecognised page reference")
)

// UnrecognizedFormatError keeps the original input around so it can be shown back to the user.
type UnrecognizedFormatError struct {
	Input string
}

func (e *UnrecognizedFormatError) Error() string {
	return fmt.Sprintf("Could not extract page ID from: %s. Please provide a valid page ID or URL.", e.Input)
}

func (e *UnrecognizedFormatError) Is(target error) bool {
	return target == ErrUnrecognizedFormat
}

// Checked in order; the first one that matches wins.
var patterns = []*regexp.Regexp{
	// https://ORG.atlassian.net/wiki/spaces/SPACE/pages/123456/Title
	regexp.MustCompile(`(?i)/pages/(\d+)(?:/|$)`),
	// https://host/pages/viewpage.action?pageId=123456, https://host/display/SPACE/Title?pageId=123456
	regexp.MustCompile(`(?i)pageId=(\d+)`),
}

// Resolve maps free-form user input to a PageID.  It never talks to the network: whether the page
// actually exists is only discovered when the ID is used.
func Resolve(input string) (PageID, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrEmptyInput
	}

	if id, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return PageID(id), nil
	}

	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(trimmed)
		if len(m) < 2 {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			// too many digits to be an ID; let the next pattern have a go
			continue
		}
		return PageID(id), nil
	}

	return 0, &UnrecognizedFormatError{Input: input}
}
