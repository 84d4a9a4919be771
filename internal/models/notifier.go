package models

// NotifierKind selects the delivery variant of a Notifier.
type NotifierKind string

const (
	NotifierLog      NotifierKind = "log"
	NotifierSlack    NotifierKind = "slack"
	NotifierTelegram NotifierKind = "telegram"
)

// SlackConfig holds the incoming webhook used by the Slack notifier.
type SlackConfig struct {
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`
	Channel    string `json:"channel" yaml:"channel"`
}

// Notifier is a configured delivery target. Slack is set only for NotifierSlack.
type Notifier struct {
	Kind  NotifierKind `json:"kind" yaml:"kind"`
	Slack *SlackConfig `json:"slack,omitempty" yaml:"slack,omitempty"`
}

func LogNotifier() Notifier {
	return Notifier{Kind: NotifierLog}
}

func SlackNotifier(webhookURL, channel string) Notifier {
	return Notifier{Kind: NotifierSlack, Slack: &SlackConfig{WebhookURL: webhookURL, Channel: channel}}
}

func (n Notifier) IsSlack() bool {
	return n.Kind == NotifierSlack && n.Slack != nil
}
