package smtp

import "fmt"

// Notifier delivers one-time codes over email. One code mechanism, two
// templates: account verification and password reset.
type Notifier struct {
	mailer Mailer
}

func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// SendVerificationCode mails the registration/verification OTP.
func (n *Notifier) SendVerificationCode(to, name, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour verification code is %s. It expires in 10 minutes.\r\n\r\nIf you did not create an account, you can ignore this email.\r\n",
		name, code,
	)
	return n.mailer.SendEmail(to, "Your One-Time Password (OTP)", body)
}

// SendPasswordResetCode mails the password-reset OTP.
func (n *Notifier) SendPasswordResetCode(to, name, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour password reset code is %s. It expires in 10 minutes.\r\n\r\nIf you did not request a password reset, you can ignore this email.\r\n",
		name, code,
	)
	return n.mailer.SendEmail(to, "Your Password Reset Code", body)
}
