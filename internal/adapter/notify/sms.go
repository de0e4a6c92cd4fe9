package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	SMSNotifierName = "sms"

	smsAction      = "SendMessageToGlobe"
	smsAPIVersion  = "2018-05-01"
	smsContentType = "application/x-www-form-urlencoded"

	// enough of an error body to be useful in a log line
	maxErrorBodyBytes = 512
)

type SMSConfig struct {
	Mobile    string
	Endpoint  string
	AccessKey string
	Secret    string
	Algorithm string
}

// SMSNotifier sends the alert through Alibaba Cloud's global SMS API
type SMSNotifier struct {
	client  *http.Client
	signer  *ACS3Signer
	now     func() time.Time
	baseURL string
	mobile  string
}

func NewSMSNotifier(cfg SMSConfig, client *http.Client) *SMSNotifier {
	if client == nil {
		client = &http.Client{Timeout: DefaultNotifyTimeout}
	}

	baseURL := cfg.Endpoint
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	return &SMSNotifier{
		client:  client,
		signer:  NewACS3Signer(cfg.AccessKey, cfg.Secret, cfg.Algorithm),
		now:     time.Now,
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		mobile:  cfg.Mobile,
	}
}

func (s *SMSNotifier) Name() string {
	return SMSNotifierName
}

func (s *SMSNotifier) Notify(ctx context.Context, reason string) error {
	form := url.Values{}
	form.Set("To", s.mobile)
	form.Set("Message", outageMessage(reason, s.now()))
	body := []byte(form.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("unable to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", smsContentType)
	s.signer.Sign(req, smsAction, smsAPIVersion, body)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("sms gateway returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
