//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coursedesk/ms-go-checkout/app/auth"
	"github.com/coursedesk/ms-go-checkout/app/types"
)

const defaultCheckoutHTTPBase = "http://localhost:48080"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	return resp, bodyBytes
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func mintToken(t *testing.T, userID string) string {
	t.Helper()

	secret := os.Getenv("APP_JWT_SECRET")
	if secret == "" {
		t.Fatal("APP_JWT_SECRET must be set for e2e runs")
	}

	token, err := auth.NewTokenManager(secret).Generate(userID, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return token
}

func TestCheckoutE2E(t *testing.T) {
	httpBase := os.Getenv("CHECKOUT_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultCheckoutHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("HTTPUnauthorizedMissingToken", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodPost, "/checkout/some-course", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for missing token, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPUnauthorizedBadToken", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodPost, "/checkout/some-course", "not-a-jwt", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for malformed token, got %d", resp.StatusCode)
		}
	})

	t.Run("HTTPValidationConfirm", func(t *testing.T) {
		token := mintToken(t, "e2e-user")
		resp, _ := client.doJSON(t, http.MethodPost, "/checkout/confirm", token, map[string]any{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty confirm body, got %d", resp.StatusCode)
		}
	})

	// The full purchase flow needs seeded fixtures; point the ids at a
	// real user and priced course in the target environment.
	t.Run("FullPurchaseFlow", func(t *testing.T) {
		userID := os.Getenv("CHECKOUT_E2E_USER_ID")
		courseID := os.Getenv("CHECKOUT_E2E_COURSE_ID")
		if userID == "" || courseID == "" {
			t.Skip("CHECKOUT_E2E_USER_ID and CHECKOUT_E2E_COURSE_ID not set")
		}

		token := mintToken(t, userID)

		resp, body := client.doJSON(t, http.MethodPost, "/checkout/"+courseID, token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("start checkout failed: %d body=%s", resp.StatusCode, string(body))
		}

		var start types.StartCheckoutResponse
		if err := json.Unmarshal(body, &start); err != nil {
			t.Fatalf("unmarshal start response failed: %v body=%s", err, string(body))
		}
		if !start.Success || start.ClientSecret == "" {
			t.Fatalf("unexpected start payload: %+v", start)
		}

		// The simulated gateway embeds the intent id in the client
		// secret; a live-Stripe environment needs a browser to confirm
		// and is out of reach here.
		intentID, ok := intentIDFromClientSecret(start.ClientSecret)
		if !ok {
			t.Skip("client secret is not from the simulated gateway, cannot confirm without a browser")
		}

		confirmReq := map[string]any{"paymentIntentId": intentID, "courseId": courseID}

		resp, body = client.doJSON(t, http.MethodPost, "/checkout/confirm", token, confirmReq)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("confirm failed: %d body=%s", resp.StatusCode, string(body))
		}

		var confirm types.ConfirmCheckoutResponse
		if err := json.Unmarshal(body, &confirm); err != nil {
			t.Fatalf("unmarshal confirm response failed: %v body=%s", err, string(body))
		}
		if !confirm.Success {
			t.Fatalf("unexpected confirm payload: %+v", confirm)
		}

		// Replay must be answered as a success, not a conflict.
		resp, body = client.doJSON(t, http.MethodPost, "/checkout/confirm", token, confirmReq)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("confirm replay failed: %d body=%s", resp.StatusCode, string(body))
		}

		var replay types.ConfirmCheckoutResponse
		if err := json.Unmarshal(body, &replay); err != nil {
			t.Fatalf("unmarshal replay response failed: %v body=%s", err, string(body))
		}
		if !replay.Success || !strings.Contains(replay.Message, "already processed") {
			t.Fatalf("unexpected replay payload: %+v", replay)
		}

		resp, body = client.doJSON(t, http.MethodGet, "/checkout/status/"+intentID, token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status lookup failed: %d body=%s", resp.StatusCode, string(body))
		}

		var status types.IntentStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			t.Fatalf("unmarshal status response failed: %v body=%s", err, string(body))
		}
		if status.Status != "succeeded" {
			t.Fatalf("unexpected intent status: %+v", status)
		}
	})

	t.Run("HTTPUnknownIntent", func(t *testing.T) {
		token := mintToken(t, "e2e-user")
		resp, _ := client.doJSON(t, http.MethodPost, "/checkout/confirm", token, map[string]any{
			"paymentIntentId": "pi_test_does_not_exist",
			"courseId":        "some-course",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown intent, got %d", resp.StatusCode)
		}
	})
}

// intentIDFromClientSecret splits a "<intent id>_secret_<suffix>"
// simulated client secret back into its intent id.
func intentIDFromClientSecret(clientSecret string) (string, bool) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 {
		return "", false
	}
	return clientSecret[:idx], true
}
