// Package livechat runs the site's simulated chat agent: canned keyword
// replies delivered after a short typing delay.
package livechat

import (
	"fmt"
	"strings"
)

// TopicDefault is reported when no keyword matched.
const TopicDefault = "default"

type cannedReply struct {
	keyword string
	text    string
}

// Responder picks canned replies by keyword. Keywords are checked in a fixed
// order and the first one contained in the message wins.
type Responder struct {
	replies      []cannedReply
	fallback     string
	greeting     string
	quickActions []QuickAction
}

// QuickAction is a one-tap shortcut offered under the chat input.
type QuickAction struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	// Prompt is sent as a user message when set. Actions without a prompt
	// are handled by the client (dialing, opening the scheduler).
	Prompt string `json:"prompt,omitempty"`
	Href   string `json:"href,omitempty"`
}

// NewResponder builds the responder for a practice phone number such as "(336) 569-7223".
func NewResponder(phone string) *Responder {
	if phone == "" {
		phone = "(336) 569-7223"
	}
	return &Responder{
		replies: []cannedReply{
			{"hello", "Hello! Welcome to NC Telepsychiatry. I'm here to help you get started with our ADHD care services. What would you like to know?"},
			{"pricing", "We offer 4 ADHD subscription plans: Starter ($79/month), Basic ($149/month), Comprehensive ($219/month), and Elite ($329/month). Which plan interests you most?"},
			{"appointment", fmt.Sprintf("I'd be happy to help you schedule an appointment! You can call us at %s for same-day appointments or use our contact form. Would you prefer to schedule by phone or online?", phone)},
			{"insurance", "We accept Blue Cross Blue Shield NC, Aetna, United Healthcare, Cigna, and select Medicare plans. What insurance do you have?"},
			{"adhd", "Our ADHD specialists provide comprehensive care including medication management, therapy techniques, and lifestyle coaching. All appointments are via secure video calls. What specific ADHD concerns do you have?"},
			{"emergency", fmt.Sprintf("For mental health emergencies, please call 911 immediately or contact the Suicide & Crisis Lifeline at 988. For urgent but non-emergency concerns, call %s.", phone)},
			{"hours", "We're available Mon-Fri: 8AM-6PM, Sat: 9AM-3PM. Our ADHD specialists also offer evening and weekend appointments for your convenience."},
		},
		fallback: fmt.Sprintf("Thank you for your message! A licensed psychiatrist will be in touch within 2 hours during business hours. For immediate assistance, please call %s.", phone),
		greeting: "Hi! I'm here to help you with your telepsychiatry needs. How can I assist you today?",
		quickActions: []QuickAction{
			{Action: "appointment", Label: "Schedule Appointment"},
			{Action: "pricing", Label: "View Pricing Plans", Prompt: "Can you tell me about your pricing plans?"},
			{Action: "phone", Label: "Call Now", Href: "tel:" + telDigits(phone)},
			{Action: "insurance", Label: "Insurance Info", Prompt: "What insurance do you accept?"},
		},
	}
}

// Reply returns the matched topic and the agent's answer.
func (r *Responder) Reply(text string) (topic, reply string) {
	lower := strings.ToLower(text)
	for _, c := range r.replies {
		if strings.Contains(lower, c.keyword) {
			return c.keyword, c.text
		}
	}
	return TopicDefault, r.fallback
}

// Greeting is the first agent message of every session.
func (r *Responder) Greeting() string {
	return r.greeting
}

// QuickActions lists the shortcuts in display order.
func (r *Responder) QuickActions() []QuickAction {
	return append([]QuickAction(nil), r.quickActions...)
}

// QuickAction looks up a shortcut by action name.
func (r *Responder) QuickAction(action string) (QuickAction, bool) {
	for _, qa := range r.quickActions {
		if qa.Action == action {
			return qa, true
		}
	}
	return QuickAction{}, false
}

// telDigits turns "(336) 569-7223" into "+13365697223".
func telDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return "+1" + digits
	}
	return "+" + digits
}
