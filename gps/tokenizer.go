package gps

import (
	"bytes"
	"strconv"
	"strings"
)

// Tokenizer splits an incoming byte stream into complete, checksum-validated
// sentences. A sentence boundary may fall anywhere inside a chunk boundary,
// so any unterminated trailing fragment is carried over to the next Push. The
// mapping from (carry, chunk) to (sentences, new carry) depends only on the
// concatenated bytes, never on where the chunks were cut.
type Tokenizer struct {
	carry           []byte
	requireChecksum bool

	linesRead        int
	checksumFailures int
}

// NewTokenizer creates a tokenizer. When requireChecksum is set, sentences
// without a trailing *hh token are dropped instead of accepted as-is.
func NewTokenizer(requireChecksum bool) *Tokenizer {
	return &Tokenizer{requireChecksum: requireChecksum}
}

// Push appends chunk to the carry-over buffer and returns every complete
// sentence terminated within it. The fragment after the last terminator is
// retained for the next call.
func (t *Tokenizer) Push(chunk []byte) []Sentence {
	t.carry = append(t.carry, chunk...)

	var sentences []Sentence
	for {
		i := bytes.IndexByte(t.carry, '\n')
		if i < 0 {
			break
		}
		line := string(t.carry[:i])
		t.carry = t.carry[i+1:]

		if s, ok := t.sentence(line, t.requireChecksum); ok {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Flush processes whatever is left in the carry-over buffer at end of stream.
// A final line missing its terminator is still emitted if its checksum
// validates; without a terminator the checksum is the only proof the line is
// complete, so checksum-less fragments are dropped as truncated.
func (t *Tokenizer) Flush() []Sentence {
	if len(t.carry) == 0 {
		return nil
	}
	line := string(t.carry)
	t.carry = nil

	if s, ok := t.sentence(line, true); ok {
		return []Sentence{s}
	}
	return nil
}

// LinesRead returns the number of non-empty lines seen so far
func (t *Tokenizer) LinesRead() int { return t.linesRead }

// ChecksumFailures returns the number of lines dropped for a bad checksum
func (t *Tokenizer) ChecksumFailures() int { return t.checksumFailures }

// sentence validates a single raw line and splits it into a Sentence. Lines
// failing validation are dropped, never fatal to the stream.
func (t *Tokenizer) sentence(line string, requireChecksum bool) (Sentence, bool) {
	line = strings.TrimRight(line, "\r \t")
	if line == "" {
		return Sentence{}, false
	}
	t.linesRead++

	if line[0] != '$' {
		return Sentence{}, false
	}
	payload := line[1:]

	if i := strings.LastIndexByte(payload, '*'); i >= 0 {
		want := payload[i+1:]
		payload = payload[:i]
		if !checksumMatches(payload, want) {
			t.checksumFailures++
			return Sentence{}, false
		}
	} else if requireChecksum {
		return Sentence{}, false
	}

	s := classify(payload)
	s.Raw = line
	return s, true
}

// nmeaChecksum XORs every payload byte between '$' and '*'
func nmeaChecksum(payload string) byte {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return sum
}

// checksumMatches compares the payload's checksum against the two hex digits
// of the trailing checksum token
func checksumMatches(payload, token string) bool {
	n, err := strconv.ParseUint(strings.TrimSpace(token), 16, 8)
	if err != nil {
		return false
	}
	return byte(n) == nmeaChecksum(payload)
}
