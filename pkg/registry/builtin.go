package registry

import "github.com/ana-fx/mail-blast-sub001/pkg/models"

// RegisterBuiltins loads the built-in trigger/action/condition node types.
func (r *Registry) RegisterBuiltins() {
	for _, def := range builtinDefinitions {
		r.Register(def)
	}
}

var builtinDefinitions = []Definition{
	// Triggers.
	{
		Type:        "contact_added",
		Kind:        models.NodeKindTrigger,
		Name:        "Contact Added",
		Description: "Fires when a contact joins a list",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_id": map[string]any{"type": "string"},
			},
		},
	},
	{
		Type:        "tag_added",
		Kind:        models.NodeKindTrigger,
		Name:        "Tag Added",
		Description: "Fires when a tag is applied to a contact",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"tag"},
		},
	},
	{
		Type:        "form_submitted",
		Kind:        models.NodeKindTrigger,
		Name:        "Form Submitted",
		Description: "Fires when a signup form is submitted",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"form_id": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"form_id"},
		},
	},
	{
		Type:        "webhook_received",
		Kind:        models.NodeKindTrigger,
		Name:        "Webhook Received",
		Description: "Fires when an inbound webhook hits the flow's endpoint",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"slug":   map[string]any{"type": "string", "minLength": 1},
				"secret": map[string]any{"type": "string"},
			},
			"required": []string{"slug"},
		},
	},

	// Actions.
	{
		Type:        "send_email",
		Kind:        models.NodeKindAction,
		Name:        "Send Email",
		Description: "Sends a template email to the contact",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template_id": map[string]any{"type": "string", "minLength": 1},
				"subject":     map[string]any{"type": "string", "minLength": 1},
				"from_name":   map[string]any{"type": "string"},
			},
			"required": []string{"template_id", "subject"},
		},
	},
	{
		Type:        "add_tag",
		Kind:        models.NodeKindAction,
		Name:        "Add Tag",
		Description: "Applies a tag to the contact",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"tag"},
		},
	},
	{
		Type:        "remove_tag",
		Kind:        models.NodeKindAction,
		Name:        "Remove Tag",
		Description: "Removes a tag from the contact",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"tag"},
		},
	},
	{
		Type:        "update_field",
		Kind:        models.NodeKindAction,
		Name:        "Update Field",
		Description: "Writes a value into a contact field",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field": map[string]any{"type": "string", "minLength": 1},
				"value": map[string]any{"type": "string"},
			},
			"required": []string{"field"},
		},
	},
	{
		Type:        "wait",
		Kind:        models.NodeKindAction,
		Name:        "Wait",
		Description: "Pauses the contact's journey for a duration",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"duration": map[string]any{
					"type":    "string",
					"pattern": "^[0-9]+[mhd]$",
				},
			},
			"required": []string{"duration"},
		},
	},

	// Conditions.
	{
		Type:        "has_tag",
		Kind:        models.NodeKindCondition,
		Name:        "Has Tag",
		Description: "Branches on whether the contact carries a tag",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"tag"},
		},
	},
	{
		Type:        "opened_email",
		Kind:        models.NodeKindCondition,
		Name:        "Opened Email",
		Description: "Branches on whether a previous email was opened",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email_node_id": map[string]any{"type": "string", "minLength": 1},
				"within_days":   map[string]any{"type": "integer", "minimum": 1},
			},
			"required": []string{"email_node_id"},
		},
	},
	{
		Type:        "clicked_link",
		Kind:        models.NodeKindCondition,
		Name:        "Clicked Link",
		Description: "Branches on whether a link in a previous email was clicked",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email_node_id": map[string]any{"type": "string", "minLength": 1},
				"within_days":   map[string]any{"type": "integer", "minimum": 1},
			},
			"required": []string{"email_node_id"},
		},
	},
	{
		Type:        "field_equals",
		Kind:        models.NodeKindCondition,
		Name:        "Field Equals",
		Description: "Branches on a contact field comparison",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field": map[string]any{"type": "string", "minLength": 1},
				"value": map[string]any{"type": "string"},
			},
			"required": []string{"field"},
		},
	},
}
