package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name      string
		header    string
		tolerance time.Duration
		want      bool
	}{
		{
			name:   "valid signature",
			header: fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(secret, body, now.Unix())),
			want:   true,
		},
		{
			name:   "valid signature with spaces",
			header: fmt.Sprintf("t=%d, v1=%s", now.Unix(), sign(secret, body, now.Unix())),
			want:   true,
		},
		{
			name:   "wrong secret",
			header: fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign("whsec_other", body, now.Unix())),
			want:   false,
		},
		{
			name:   "tampered body",
			header: fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(secret, []byte(`{"id":"evt_2"}`), now.Unix())),
			want:   false,
		},
		{
			name:   "missing timestamp",
			header: fmt.Sprintf("v1=%s", sign(secret, body, now.Unix())),
			want:   false,
		},
		{
			name:   "missing signature",
			header: fmt.Sprintf("t=%d", now.Unix()),
			want:   false,
		},
		{
			name:   "empty header",
			header: "",
			want:   false,
		},
		{
			name: "second candidate signature matches",
			header: fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(),
				sign("whsec_old", body, now.Unix()), sign(secret, body, now.Unix())),
			want: true,
		},
		{
			name: "timestamp outside tolerance",
			header: fmt.Sprintf("t=%d,v1=%s", now.Add(-10*time.Minute).Unix(),
				sign(secret, body, now.Add(-10*time.Minute).Unix())),
			tolerance: 5 * time.Minute,
			want:      false,
		},
		{
			name: "timestamp inside tolerance",
			header: fmt.Sprintf("t=%d,v1=%s", now.Add(-time.Minute).Unix(),
				sign(secret, body, now.Add(-time.Minute).Unix())),
			tolerance: 5 * time.Minute,
			want:      true,
		},
		{
			name:      "non-numeric timestamp with tolerance",
			header:    "t=yesterday,v1=deadbeef",
			tolerance: 5 * time.Minute,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verifySignature(secret, body, tt.header, tt.tolerance, now)
			assert.Equal(t, tt.want, got)
		})
	}
}
