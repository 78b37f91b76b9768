package services

type SMSServiceInterface interface {
	SendSMS(to, message string) error
	SendBulkSMS(recipients []string, message string) error
}

type EmailServiceInterface interface {
	SendEmail(to, subject, htmlBody string) error
}
