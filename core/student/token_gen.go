package student

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Email verification tokens are stateless: validity is entirely re-derivable from
// the token itself plus the secret and the clock, so links keep working across
// process restarts. The salt binds tokens to this single purpose; a token signed
// for any other context can never verify here.
var (
	tokenSalt = []byte("edureach.core.student.token_gen.email-verify")
	nowFunc   = time.Now // mockable

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

	// errors
	ErrInvalidToken = errors.New("invalid verification token")
	ErrTokenExpired = errors.New("verification link expired")
)

// makeToken generates an email verification token binding email and issue time.
func makeToken(email string, secret []byte) string {
	return makeTokenWithTimestamp(email, nowFunc().Unix(), secret)
}

// verifyToken checks the token's signature and age and returns the email it was
// issued for. Structural or signature failures return ErrInvalidToken; a
// correctly signed but stale token returns ErrTokenExpired.
func verifyToken(token string, maxAge time.Duration, secret []byte) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	parts := strings.SplitN(token, "-", 3)
	if len(parts) < 3 {
		return "", ErrInvalidToken
	}

	emailBytes, err := b32.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	email := string(emailBytes)

	tsBytes, err := b32.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidToken
	}
	ts, err := strconv.ParseInt(string(tsBytes), 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}

	// check that token has not been tampered with
	expected := makeTokenWithTimestamp(email, ts, secret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 0 {
		return "", ErrInvalidToken
	}

	// check that the issue time is within limit
	if nowFunc().Sub(time.Unix(ts, 0)) > maxAge {
		return "", ErrTokenExpired
	}
	return email, nil
}

func makeTokenWithTimestamp(email string, ts int64, secret []byte) string {
	emailB32 := b32.EncodeToString([]byte(email))
	tsB32 := b32.EncodeToString([]byte(strconv.FormatInt(ts, 10)))
	sig := sign(hashValue(email, ts), secret)
	return fmt.Sprintf("%s-%s-%s", emailB32, tsB32, sig)
}

func sign(val, secret []byte) string {
	key := sha256.Sum256(append(tokenSalt, secret...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashValue(email string, ts int64) []byte {
	var val bytes.Buffer
	val.WriteString(email)
	val.WriteString(strconv.FormatInt(ts, 10))
	return val.Bytes()
}
