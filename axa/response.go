package axa

import (
	"strconv"
	"strings"
	"unicode"
)

// splitResponse splits a response at its first whitespace run into a numeric
// status code and the trailing message. The run is not always a plain space;
// multi-line responses arrive joined with "\n". A response whose head does
// not parse as an integer carries no code; the whole response is returned as
// the message.
func splitResponse(response string) (RawStatus, string) {
	head, rest := response, ""
	if i := strings.IndexFunc(response, unicode.IsSpace); i >= 0 {
		head, rest = response[:i], response[i:]
	}

	code, err := strconv.Atoi(head)
	if err != nil {
		return RawStatusNone, response
	}

	return RawStatus(code), strings.TrimSpace(rest)
}
