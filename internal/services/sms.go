package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
	"go.uber.org/zap"
)

const DefaultSMSBaseURL = "https://api.sandbox.africastalking.com/version1/messaging"

// Africa's Talking per-recipient status codes that mean accepted.
const (
	statusProcessed = 101
	statusSent      = 102
)

type SMSService struct {
	username    string
	apiKey      string
	senderId    string
	baseUrl     string
	countryCode string
	client      *http.Client
}

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageId  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func NewSMSService(cfg config.SMSConfig) *SMSService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSMSBaseURL
	}
	countryCode := cfg.CountryCode
	if countryCode == "" {
		countryCode = "+91"
	}
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}
	return &SMSService{
		username:    cfg.Username,
		apiKey:      cfg.APIKey,
		senderId:    cfg.SenderID,
		baseUrl:     baseURL,
		countryCode: countryCode,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SMSService) post(to, message string) (*SMSResponse, error) {
	data := url.Values{}
	data.Set("username", s.username)
	data.Set("to", to)
	data.Set("message", message)
	if s.senderId != "" {
		data.Set("from", s.senderId)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseUrl, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	zap.L().Debug("sms api response", zap.Int("status", resp.StatusCode), zap.ByteString("body", bodyBytes))

	var smsResponse SMSResponse
	if err := json.Unmarshal(bodyBytes, &smsResponse); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return &smsResponse, nil
}

func (s *SMSService) SendSMS(to, message string) error {
	smsResponse, err := s.post(s.formatPhoneNumber(to), message)
	if err != nil {
		return err
	}

	if len(smsResponse.SMSMessageData.Recipients) == 0 {
		return errors.New("no recipients in response")
	}

	recipient := smsResponse.SMSMessageData.Recipients[0]
	if recipient.StatusCode != statusProcessed && recipient.StatusCode != statusSent {
		return errors.Errorf("SMS failed to send: %s (code: %d)", recipient.Status, recipient.StatusCode)
	}
	return nil
}

func (s *SMSService) SendBulkSMS(recipients []string, message string) error {
	to := strings.Join(s.formatPhoneNumbers(recipients), ",")
	smsResponse, err := s.post(to, message)
	if err != nil {
		return err
	}

	successCount := 0
	for _, recipient := range smsResponse.SMSMessageData.Recipients {
		if recipient.StatusCode == statusProcessed || recipient.StatusCode == statusSent {
			successCount++
		}
	}
	if successCount == 0 {
		return errors.New("failed to send sms to any recipient")
	}
	return nil
}

func (s *SMSService) formatPhoneNumber(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")

	if strings.HasPrefix(phone, "0") {
		phone = s.countryCode + phone[1:]
	}
	if !strings.HasPrefix(phone, "+") {
		phone = s.countryCode + phone
	}
	return phone
}

func (s *SMSService) formatPhoneNumbers(phones []string) []string {
	formatted := make([]string, len(phones))
	for i, phone := range phones {
		formatted[i] = s.formatPhoneNumber(phone)
	}
	return formatted
}

// MockSMSService records messages instead of sending them. Safe for
// concurrent use.
type MockSMSService struct {
	mu           sync.Mutex
	SentMessages []MockSMSMessage
	Err          error
}

type MockSMSMessage struct {
	To      string
	Message string
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]MockSMSMessage, 0),
	}
}

func (m *MockSMSService) SendSMS(to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.SentMessages = append(m.SentMessages, MockSMSMessage{To: to, Message: message})
	return nil
}

func (m *MockSMSService) SendBulkSMS(recipients []string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, recipient := range recipients {
		m.SentMessages = append(m.SentMessages, MockSMSMessage{To: recipient, Message: message})
	}
	return nil
}

func (m *MockSMSService) Messages() []MockSMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSMSMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}
