// Package fingerprint derives stable cache keys from pipeline requests.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Field separators keep task, model, text and parameters from colliding
// across field boundaries in the digest input.
const (
	fieldSep = "\x00"
	pairSep  = "\x1f"
)

// Key computes the deterministic fingerprint of a request. Input text is
// normalized (leading/trailing whitespace trimmed, internal whitespace
// runs collapsed to a single space; case is preserved) and parameters
// are serialized in sorted key order, so semantically identical requests
// hash identically regardless of formatting or map iteration order.
func Key(req models.Request) string {
	h := sha256.New()
	h.Write([]byte(string(req.Task)))
	h.Write([]byte(fieldSep))
	h.Write([]byte(req.ModelID))
	h.Write([]byte(fieldSep))
	h.Write([]byte(NormalizeText(req.InputText)))
	h.Write([]byte(fieldSep))
	h.Write([]byte(canonicalParams(req.Parameters)))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeText trims the text and collapses internal whitespace runs
// (spaces, tabs, newlines) to single spaces. Case is meaningful and is
// not touched.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func canonicalParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(pairSep)
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}
