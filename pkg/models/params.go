package models

import "encoding/json"

// NodeParams is the typed view over a node's Config map. Each built-in node
// type decodes into its own parameter record; types the model does not
// recognize decode into OpaqueParams so forward-compatible payloads survive a
// round trip untouched.
type NodeParams interface {
	NodeType() string
}

// SendEmailParams configures the send_email action.
type SendEmailParams struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	FromName   string `json:"from_name,omitempty"`
}

func (SendEmailParams) NodeType() string { return "send_email" }

// TagParams configures the add_tag / remove_tag actions and the has_tag and
// tag_added types, all of which carry a single tag name.
type TagParams struct {
	Tag string `json:"tag"`
}

func (TagParams) NodeType() string { return "tag" }

// WaitParams configures the wait action.
type WaitParams struct {
	Duration string `json:"duration"` // e.g. "2h", "3d"
}

func (WaitParams) NodeType() string { return "wait" }

// UpdateFieldParams configures the update_field action.
type UpdateFieldParams struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (UpdateFieldParams) NodeType() string { return "update_field" }

// FieldEqualsParams configures the field_equals condition.
type FieldEqualsParams struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (FieldEqualsParams) NodeType() string { return "field_equals" }

// EmailEngagementParams configures the opened_email / clicked_link
// conditions, which reference a previously sent campaign email.
type EmailEngagementParams struct {
	EmailNodeID string `json:"email_node_id"`
	WithinDays  int    `json:"within_days,omitempty"`
}

func (EmailEngagementParams) NodeType() string { return "email_engagement" }

// WebhookTriggerParams configures the webhook_received trigger.
type WebhookTriggerParams struct {
	Slug   string `json:"slug"`
	Secret string `json:"secret,omitempty"`
}

func (WebhookTriggerParams) NodeType() string { return "webhook_received" }

// FormTriggerParams configures the form_submitted trigger.
type FormTriggerParams struct {
	FormID string `json:"form_id"`
}

func (FormTriggerParams) NodeType() string { return "form_submitted" }

// OpaqueParams carries configuration for node types this model does not
// understand. The raw map is preserved as-is.
type OpaqueParams struct {
	Type string
	Raw  map[string]any
}

func (p OpaqueParams) NodeType() string { return p.Type }

// DecodeParams converts a node's Config map into its typed parameter record.
// Unrecognized node types fall back to OpaqueParams; malformed config for a
// known type is a decode error.
func DecodeParams(node *FlowNode) (NodeParams, error) {
	raw, err := json.Marshal(node.Config)
	if err != nil {
		return nil, err
	}

	decode := func(dst NodeParams) (NodeParams, error) {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, err
		}

		return dst, nil
	}

	switch node.Type {
	case "send_email":
		return decode(&SendEmailParams{})
	case "add_tag", "remove_tag", "has_tag", "tag_added":
		return decode(&TagParams{})
	case "wait":
		return decode(&WaitParams{})
	case "update_field":
		return decode(&UpdateFieldParams{})
	case "field_equals":
		return decode(&FieldEqualsParams{})
	case "opened_email", "clicked_link":
		return decode(&EmailEngagementParams{})
	case "webhook_received":
		return decode(&WebhookTriggerParams{})
	case "form_submitted":
		return decode(&FormTriggerParams{})
	default:
		return OpaqueParams{Type: node.Type, Raw: node.Config}, nil
	}
}
