package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SchemePrefix is the scheme tag carried in the signature header,
// e.g. "SHA256=<base64 digest>".
const SchemePrefix = "SHA256="

// Verifier validates webhook request signatures. The digest is computed
// over the exact raw request bytes; callers must capture the body before
// any structured parsing, since re-serializing a parsed payload changes
// whitespace and key order and therefore the hash.
type Verifier struct {
	secret      []byte
	environment string
	skipVerify  bool
}

// New creates a Verifier for the given channel secret. environment and
// skipVerify together gate the development-only bypass.
func New(secret, environment string, skipVerify bool) *Verifier {
	return &Verifier{
		secret:      []byte(secret),
		environment: environment,
		skipVerify:  skipVerify,
	}
}

// BypassEnabled reports whether signature verification may be skipped.
// Both conditions are server-side configuration; request input can never
// enable the bypass. This is the single source of truth for the gate.
func (v *Verifier) BypassEnabled() bool {
	return v.environment == "development" && v.skipVerify
}

// Verify reports whether claimedSignature matches the HMAC-SHA256 of
// rawBody under the channel secret. It returns false on a missing or
// malformed header and never panics.
func (v *Verifier) Verify(rawBody []byte, claimedSignature string) bool {
	if claimedSignature == "" {
		return false
	}

	encoded := claimedSignature
	if strings.HasPrefix(strings.ToUpper(encoded), SchemePrefix) {
		encoded = encoded[len(SchemePrefix):]
	}

	claimed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)

	return hmac.Equal(claimed, mac.Sum(nil))
}

// Sign computes the signature header value for rawBody. Used by tests and
// by the botctl webhook send command.
func (v *Verifier) Sign(rawBody []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	return SchemePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
