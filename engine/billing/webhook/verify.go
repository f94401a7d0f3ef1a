package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const headerSignature = "Stripe-Signature"

const defaultSkew = 5 * time.Minute

// ErrSignatureMismatch is returned when no signature candidate matches
var ErrSignatureMismatch = errors.New("signature mismatch")

// Verifier validates provider webhook signatures. The provider signs the
// payload as HMAC-SHA256 over "<timestamp>.<body>" and sends timestamp and
// candidate signatures in the Stripe-Signature header.
type Verifier struct {
	secret []byte
	skew   time.Duration
	now    func() time.Time
}

// NewVerifier creates a webhook verifier. A zero skew uses the default
// five-minute tolerance.
func NewVerifier(secret []byte, skew time.Duration) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty webhook secret")
	}
	if skew == 0 {
		skew = defaultSkew
	}
	return &Verifier{secret: secret, skew: skew, now: time.Now}, nil
}

// Verify checks the signature header against the raw request body
func (v *Verifier) Verify(r *http.Request, body []byte) error {
	header := r.Header.Get(headerSignature)
	if header == "" {
		return errors.New("missing Stripe-Signature")
	}
	tsStr, candidates, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return errors.New("invalid signature timestamp")
	}
	currentTime := v.now()
	tstamp := time.Unix(ts, 0)
	if currentTime.Sub(tstamp) > v.skew || tstamp.Sub(currentTime) > v.skew {
		return errors.New("timestamp skew too large")
	}
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(tsStr))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	expected := mac.Sum(nil)
	for _, c := range candidates {
		got, err := hex.DecodeString(c)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

func parseSignatureHeader(header string) (string, []string, error) {
	var tsStr string
	var v1Values []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			tsStr = kv[1]
		case "v1":
			v1Values = append(v1Values, strings.TrimSpace(kv[1]))
		}
	}
	if tsStr == "" || len(v1Values) == 0 {
		return "", nil, errors.New("invalid signature header format")
	}
	return tsStr, v1Values, nil
}
