package mailer

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSenderFromSettings() *SMTPSender {
	return &SMTPSender{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
		From:     viper.GetString("smtp.from"),
	}
}

// Send delivers one mail per recipient so followers never see each other's address.
// It keeps going after a failed recipient and reports the first error.
func (v *SMTPSender) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(v.Host, strconv.Itoa(v.Port))

	var auth smtp.Auth
	if len(v.Username) > 0 {
		auth = smtp.PlainAuth("", v.Username, v.Password, v.Host)
	}

	var firstErr error
	for _, to := range msg.To {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := smtp.SendMail(addr, auth, v.From, []string{to}, Compose(v.From, to, msg)); err != nil {
			log.Warn().Err(err).Str("to", to).Msg("Unable to deliver mail...")
			if firstErr == nil {
				firstErr = fmt.Errorf("unable to deliver mail to %s: %v", to, err)
			}
		}
	}

	return firstErr
}

var headerLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Compose renders a plain text mail. Header values are folded onto one line and
// the subject is Q-encoded, so a post title can never add headers of its own.
func Compose(from, to string, msg Message) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + headerLineBreaks.Replace(from) + "\r\n")
	sb.WriteString("To: " + headerLineBreaks.Replace(to) + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerLineBreaks.Replace(msg.Subject)) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	return []byte(sb.String())
}
