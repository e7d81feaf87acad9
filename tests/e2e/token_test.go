package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// httpDoWithToken performs an HTTP request using a specific token.
func httpDoWithToken(t *testing.T, method, url string, body interface{}, token string) (*http.Response, string) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("create %s request %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestTokenLifecycle(t *testing.T) {
	// Create a token.
	resp, body := httpPost(t, apiURL+"/me/tokens", map[string]interface{}{
		"name": "e2e-token",
	})
	require.Equal(t, 201, resp.StatusCode, "create token: %s", body)
	created := parseJSON(t, body)
	rawToken := created["raw_token"].(string)
	tokenID := created["token"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, rawToken, "raw token should be returned on creation")

	// The new token authenticates.
	resp, body = httpDoWithToken(t, "GET", apiURL+"/me", nil, rawToken)
	require.Equal(t, 200, resp.StatusCode, "authenticate with new token: %s", body)

	// The raw token never appears in the listing.
	resp, body = httpGet(t, apiURL+"/me/tokens")
	require.Equal(t, 200, resp.StatusCode, "list tokens: %s", body)
	require.NotContains(t, body, rawToken)

	// Revoke; the token stops working.
	resp, body = httpDelete(t, apiURL+"/me/tokens/"+tokenID)
	require.Equal(t, 204, resp.StatusCode, "revoke token: %s", body)

	resp, _ = httpDoWithToken(t, "GET", apiURL+"/me", nil, rawToken)
	require.Equal(t, 401, resp.StatusCode, "revoked token should not authenticate")
}

func TestProfileUpdate(t *testing.T) {
	resp, body := httpGet(t, apiURL+"/me")
	require.Equal(t, 200, resp.StatusCode, "get profile: %s", body)
	original := parseJSON(t, body)

	resp, body = httpPut(t, apiURL+"/me", map[string]interface{}{
		"full_name": "E2E Updated Name",
	})
	require.Equal(t, 200, resp.StatusCode, "update profile: %s", body)
	require.Equal(t, "E2E Updated Name", parseJSON(t, body)["full_name"])

	// Restore.
	httpPut(t, apiURL+"/me", map[string]interface{}{
		"full_name": original["full_name"],
	})
}
