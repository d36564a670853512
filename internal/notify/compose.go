package notify

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/havenwelfare/haven-backend/internal/models"
)

const footer = "HavenWelfare - Rehabilitation & Welfare Platform"

// Composer renders the markdown email templates to HTML. User-supplied values
// go through escapeMarkdown, so only the templates themselves produce links.
type Composer struct {
	frontendURL string
	md          goldmark.Markdown
	printer     *message.Printer
}

func NewComposer(frontendURL string) *Composer {
	return &Composer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		md:          goldmark.New(),
		printer:     message.NewPrinter(language.English),
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
	"!", `\!`, "&", `\&`, "~", `\~`, "|", `\|`,
	"\r", " ", "\n", " ",
)

// escapeMarkdown makes s render as literal text inside a paragraph.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatAmount renders a dollar amount with thousands separators, e.g. $1,234.50.
func (c *Composer) FormatAmount(amount float64) string {
	return c.printer.Sprintf("$%.2f", amount)
}

func (c *Composer) render(to, toName, subject, heading, body string) (Message, error) {
	var src strings.Builder
	fmt.Fprintf(&src, "# %s\n\n%s\n\n---\n\n*%s*\n", heading, body, footer)

	var html bytes.Buffer
	if err := c.md.Convert([]byte(src.String()), &html); err != nil {
		return Message{}, fmt.Errorf("render %q: %w", subject, err)
	}
	return Message{
		To:      to,
		ToName:  toName,
		Subject: subject,
		HTML:    html.String(),
		Text:    src.String(),
	}, nil
}

func (c *Composer) PasswordReset(to, name, token string) (Message, error) {
	link := c.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hello %s,\n\n"+
		"You requested to reset your password. Use the link below to proceed:\n\n"+
		"[Reset Password](%s)\n\n"+
		"This link will expire in 1 hour.\n\n"+
		"If you didn't request this, please ignore this email.", escapeMarkdown(name), link)
	return c.render(to, name, "Password Reset Request - HavenWelfare", "Password Reset", body)
}

// UserStatus returns ok=false for statuses that do not trigger an email.
func (c *Composer) UserStatus(to, name string, role models.Role, status models.UserStatus) (msg Message, ok bool, err error) {
	var subject, heading, text, action, link string
	switch status {
	case models.UserApproved:
		subject = "Account Approved - HavenWelfare"
		heading = "Your Account Has Been Approved!"
		text = fmt.Sprintf("Great news! Your %s account has been approved. You can now log in and access all features.", role)
		action, link = "Login Now", c.frontendURL+"/login"
	case models.UserRejected:
		subject = "Account Application Update - HavenWelfare"
		heading = "Account Application Not Approved"
		text = "Unfortunately, your account application was not approved at this time. Please contact our support team for more information."
		action, link = "Contact Support", c.frontendURL
	case models.UserSuspended:
		subject = "Account Suspended - HavenWelfare"
		heading = "Your Account Has Been Suspended"
		text = "Your account has been temporarily suspended. Please contact our support team for more information."
		action, link = "Contact Support", c.frontendURL
	default:
		return Message{}, false, nil
	}

	body := fmt.Sprintf("Hello %s,\n\n%s\n\n[%s](%s)", escapeMarkdown(name), text, action, link)
	msg, err = c.render(to, name, subject, heading, body)
	return msg, err == nil, err
}

// DonationStatus covers approved and rejected reviews. Remarks are included
// as plain text on rejection when present.
func (c *Composer) DonationStatus(to, donorName, patientName string, amount float64, status models.DonationStatus, remarks string) (Message, error) {
	if donorName == "" {
		donorName = "Donor"
	}
	if patientName == "" {
		patientName = "a patient"
	}

	var subject, heading, text, extra, action string
	if status == models.DonationApproved {
		subject = "Donation Approved - HavenWelfare"
		heading = "Thank You for Your Generous Donation!"
		text = fmt.Sprintf("Your donation of %s to support %s has been verified and approved.", c.FormatAmount(amount), escapeMarkdown(patientName))
		extra = "You can now download your donation receipt from our portal."
		action = "View Receipt"
	} else {
		subject = "Donation Status Update - HavenWelfare"
		heading = "Donation Verification Update"
		text = fmt.Sprintf("Your donation submission of %s could not be verified at this time.", c.FormatAmount(amount))
		extra = "Please contact support for more details."
		if remarks != "" {
			extra = "Admin remarks: " + escapeMarkdown(remarks)
		}
		action = "Contact Support"
	}

	body := fmt.Sprintf("Hello %s,\n\n%s\n\n%s\n\n[%s](%s/donate)", escapeMarkdown(donorName), text, extra, action, c.frontendURL)
	return c.render(to, donorName, subject, heading, body)
}
