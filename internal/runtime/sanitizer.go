package runtime

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nexsupply/nexi/pkg/domain"
)

const (
	// DefaultMaxInputSize caps one typed answer at 4KB.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides the cap for engines built without WithMaxInputSize.
	EnvMaxInputSize = "NEXI_MAX_INPUT_SIZE"
)

var (
	ErrAnswerTooLong  = errors.New("answer is too long")
	ErrAnswerEncoding = errors.New("answer is not valid UTF-8")
)

// cleanAnswer prepares one typed answer for node: oversized or badly
// encoded text is rejected with a *domain.ValidationError for the node,
// control characters other than newline, tab and carriage return are
// dropped and the result is trimmed. An answer made only of control
// characters comes back empty, which the caller treats as no answer.
func cleanAnswer(nodeID, input string, limit int) (string, error) {
	if len(input) > limit {
		return "", &domain.ValidationError{
			NodeID: nodeID,
			Reason: fmt.Sprintf("answer is %d bytes, the limit is %d", len(input), limit),
			Err:    ErrAnswerTooLong,
		}
	}
	if !utf8.ValidString(input) {
		return "", &domain.ValidationError{NodeID: nodeID, Reason: "answer contains invalid characters", Err: ErrAnswerEncoding}
	}
	return strings.TrimSpace(strings.Map(keepRune, input)), nil
}

func keepRune(r rune) rune {
	if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
		return -1
	}
	return r
}

func maxInputSize() int {
	if n, err := strconv.Atoi(os.Getenv(EnvMaxInputSize)); err == nil && n > 0 {
		return n
	}
	return DefaultMaxInputSize
}
