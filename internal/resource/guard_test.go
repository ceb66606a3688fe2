package resource

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"torq/internal/authz"
	"torq/internal/logs"
	"torq/internal/models"
	"torq/internal/oracle"
)

var testSecret = []byte("resource-test-signing-secret")

func TestMain(m *testing.M) {
	logs.Init(logs.Options{Level: "error"})
	os.Exit(m.Run())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func mintToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	raw, err := authz.NewSigner(testSecret, ttl).Mint("car_A", "VIN0001", "telemetry_basic")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return raw
}

func problemCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var p models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("problem decode: %v (%s)", err, w.Body.String())
	}
	return p.Code
}

func TestRequireToken(t *testing.T) {
	expired := mintToken(t, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	noVIN, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authz.TokenClaims{
		ClientID:  "car_A",
		Scope:     "telemetry_basic",
		TokenType: authz.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"valid", "Bearer " + mintToken(t, time.Hour), http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, models.CodeTokenMalformed},
		{"not bearer", "Basic abc", http.StatusUnauthorized, models.CodeTokenMalformed},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, models.CodeTokenMalformed},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, models.CodeTokenExpired},
		{"missing claim", "Bearer " + noVIN, http.StatusUnauthorized, models.CodeMissingClaim},
	}

	h := RequireToken(testSecret)(okHandler())
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/car/v1/telemetry/car_A", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != c.wantStatus {
				t.Fatalf("status %d, want %d (%s)", w.Code, c.wantStatus, w.Body.String())
			}
			if c.wantCode != "" && problemCode(t, w) != c.wantCode {
				t.Fatalf("code %q, want %q", problemCode(t, w), c.wantCode)
			}
		})
	}
}

func TestClaimsFrom(t *testing.T) {
	var got *authz.TokenClaims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFrom(r)
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, time.Hour))
	RequireToken(testSecret)(inner).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ClientID != "car_A" || got.VIN != "VIN0001" {
		t.Fatalf("claims in context: %+v", got)
	}
}

func TestSignatureGuard(t *testing.T) {
	oc := oracle.NewMemClient()
	oc.Allow(oracle.SignerOf("good-sig"), "/car/v1/telemetry/car_A")
	h := SignatureGuard(oc)(okHandler())

	do := func(nonce, sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/car/v1/telemetry/car_A", nil)
		if nonce != "" {
			req.Header.Set("X-Nonce", nonce)
		}
		if sig != "" {
			req.Header.Set("X-Signature", sig)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	if w := do("n1", "good-sig"); w.Code != http.StatusOK {
		t.Fatalf("allowed: %d %s", w.Code, w.Body.String())
	}

	// повтор nonce — отказ, та же непрозрачная ошибка
	if w := do("n1", "good-sig"); w.Code != http.StatusForbidden || problemCode(t, w) != models.CodeAccessDenied {
		t.Fatalf("replay: %d %s", w.Code, w.Body.String())
	}

	if w := do("n2", "stranger-sig"); w.Code != http.StatusForbidden || problemCode(t, w) != models.CodeAccessDenied {
		t.Fatalf("unknown signer: %d %s", w.Code, w.Body.String())
	}

	if w := do("", "good-sig"); w.Code != http.StatusBadRequest {
		t.Fatalf("missing nonce: %d", w.Code)
	}
	if w := do("n3", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing signature: %d", w.Code)
	}

	oc.SetDown(true)
	if w := do("n4", "good-sig"); w.Code != http.StatusServiceUnavailable || problemCode(t, w) != models.CodePolicyUnavailable {
		t.Fatalf("ledger down: %d %s", w.Code, w.Body.String())
	}
	oc.SetDown(false)

	// n4 не сгорел во время недоступности
	if w := do("n4", "good-sig"); w.Code != http.StatusOK {
		t.Fatalf("after recovery: %d %s", w.Code, w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	h := AdminAuth("admin-secret")(okHandler())
	do := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/v1/files/register", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if c := do("Bearer admin-secret"); c != http.StatusOK {
		t.Fatalf("valid secret: %d", c)
	}
	if c := do("Bearer wrong"); c != http.StatusUnauthorized {
		t.Fatalf("wrong secret: %d", c)
	}
	if c := do(""); c != http.StatusUnauthorized {
		t.Fatalf("no header: %d", c)
	}

	// пустой сконфигурированный секрет закрывает контур целиком
	closed := AdminAuth("")(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/files/register", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	closed.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured secret: %d", w.Code)
	}
}
