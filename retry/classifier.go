package retry

import (
	"strings"

	"github.com/ClipFinance/testnet-bridge/common/types"
)

// DefaultFatalErrors are the error fragments that abandon an account without retry.
var DefaultFatalErrors = []string{"insufficient funds for gas"}

// Classifier maps a failed attempt's error to a retry verdict.
type Classifier interface {
	Classify(err error) types.Verdict
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(err error) types.Verdict

// Classify calls f(err).
func (f ClassifierFunc) Classify(err error) types.Verdict {
	return f(err)
}

// SubstringClassifier classifies an error as Fatal when its message contains
// any of the configured fragments. Anything unrecognized is Retryable.
type SubstringClassifier struct {
	Fatal []string
}

// NewSubstringClassifier creates a classifier for the given fatal fragments.
func NewSubstringClassifier(fatal []string) *SubstringClassifier {
	return &SubstringClassifier{Fatal: append([]string(nil), fatal...)}
}

// Classify returns the verdict for err. A nil error is Retryable.
func (c *SubstringClassifier) Classify(err error) types.Verdict {
	if err == nil {
		return types.Retryable
	}
	return ClassifyMessage(err.Error(), c.Fatal)
}

// ClassifyMessage returns Fatal iff some element of fatal is a substring of message.
func ClassifyMessage(message string, fatal []string) types.Verdict {
	for _, f := range fatal {
		if strings.Contains(message, f) {
			return types.Fatal
		}
	}
	return types.Retryable
}
