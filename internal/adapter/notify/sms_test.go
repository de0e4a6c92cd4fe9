package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newFixedSigner() *ACS3Signer {
	s := NewACS3Signer("LTAIkey", "topsecret", "")
	s.now = func() time.Time { return fixedTime }
	s.nonce = func() string { return "3c0f8a8e-6c1b-4c59-9d0f-2f4f1e2b7a11" }
	return s
}

func TestACS3Signer_Sign(t *testing.T) {
	body := []byte("To=85200000000&Message=hello")
	req, err := http.NewRequest(http.MethodPost, "https://dysmsapi.aliyuncs.com/", strings.NewReader(string(body)))
	require.NoError(t, err)

	newFixedSigner().Sign(req, "SendMessageToGlobe", "2018-05-01", body)

	sum := sha256.Sum256(body)
	hashedPayload := hex.EncodeToString(sum[:])

	assert.Equal(t, "SendMessageToGlobe", req.Header.Get("x-acs-action"))
	assert.Equal(t, "2018-05-01", req.Header.Get("x-acs-version"))
	assert.Equal(t, "2025-03-14T09:26:53Z", req.Header.Get("x-acs-date"))
	assert.Equal(t, "3c0f8a8e-6c1b-4c59-9d0f-2f4f1e2b7a11", req.Header.Get("x-acs-signature-nonce"))
	assert.Equal(t, hashedPayload, req.Header.Get("x-acs-content-sha256"))

	signed := "host;x-acs-action;x-acs-content-sha256;x-acs-date;x-acs-signature-nonce;x-acs-version"
	canonical := "POST\n/\n\n" +
		"host:dysmsapi.aliyuncs.com\n" +
		"x-acs-action:SendMessageToGlobe\n" +
		"x-acs-content-sha256:" + hashedPayload + "\n" +
		"x-acs-date:2025-03-14T09:26:53Z\n" +
		"x-acs-signature-nonce:3c0f8a8e-6c1b-4c59-9d0f-2f4f1e2b7a11\n" +
		"x-acs-version:2018-05-01\n" +
		"\n" + signed + "\n" + hashedPayload
	canonicalSum := sha256.Sum256([]byte(canonical))
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write([]byte("ACS3-HMAC-SHA256\n" + hex.EncodeToString(canonicalSum[:])))
	wantSignature := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t,
		"ACS3-HMAC-SHA256 Credential=LTAIkey,SignedHeaders="+signed+",Signature="+wantSignature,
		req.Header.Get("Authorization"))
}

func TestACS3Signer_FreshNoncePerRequest(t *testing.T) {
	s := NewACS3Signer("key", "secret", "")

	nonces := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodPost, "https://example.com/", nil)
		s.Sign(req, "A", "V", nil)
		nonces[req.Header.Get("x-acs-signature-nonce")] = struct{}{}
	}
	assert.Len(t, nonces, 5)
}

type capturedRequest struct {
	header http.Header
	method string
	path   string
	body   string
}

func newSMSServer(t *testing.T, status int) (*httptest.Server, chan capturedRequest) {
	t.Helper()
	captured := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured <- capturedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: string(body)}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ResponseCode":"OK"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestSMSNotifier_SendsSignedForm(t *testing.T) {
	srv, captured := newSMSServer(t, http.StatusOK)

	n := NewSMSNotifier(SMSConfig{
		Mobile:    "85200000000",
		Endpoint:  srv.URL,
		AccessKey: "LTAIkey",
		Secret:    "topsecret",
	}, srv.Client())
	n.now = func() time.Time { return fixedTime }

	require.NoError(t, n.Notify(context.Background(), "unreachable: connection refused"))

	got := <-captured
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/", got.path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.header.Get("Content-Type"))
	assert.Equal(t, "SendMessageToGlobe", got.header.Get("x-acs-action"))
	assert.True(t, strings.HasPrefix(got.header.Get("Authorization"), "ACS3-HMAC-SHA256 Credential=LTAIkey,"))

	form, err := url.ParseQuery(got.body)
	require.NoError(t, err)
	assert.Equal(t, "85200000000", form.Get("To"))
	assert.Contains(t, form.Get("Message"), "unreachable: connection refused")

	sum := sha256.Sum256([]byte(got.body))
	assert.Equal(t, hex.EncodeToString(sum[:]), got.header.Get("x-acs-content-sha256"))
}

func TestSMSNotifier_Non2xxIsError(t *testing.T) {
	srv, _ := newSMSServer(t, http.StatusForbidden)

	n := NewSMSNotifier(SMSConfig{Mobile: "1", Endpoint: srv.URL, AccessKey: "k", Secret: "s"}, srv.Client())
	err := n.Notify(context.Background(), "reason")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
}

func TestNewSMSNotifier_EndpointWithoutScheme(t *testing.T) {
	n := NewSMSNotifier(SMSConfig{Endpoint: "dysmsapi.ap-southeast-1.aliyuncs.com"}, nil)
	assert.Equal(t, "https://dysmsapi.ap-southeast-1.aliyuncs.com/", n.baseURL)
	assert.Equal(t, SMSNotifierName, n.Name())
}
