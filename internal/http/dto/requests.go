package dto

type DecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type SaveBusinessRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Website *string `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

// Campaigns

type CampaignRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	CustomerName  string  `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	MessageHTML   *string `json:"message_html,omitempty" validate:"omitempty,max=20000"`
}

// Public recording page

type SubmitTestimonialRequest struct {
	AssetID         string  `json:"asset_id" validate:"required,max=255"`
	URL             string  `json:"url" validate:"required,url"`
	DurationSeconds int     `json:"duration_seconds" validate:"required,gt=0"`
	FileSizeBytes   int64   `json:"file_size_bytes" validate:"gte=0"`
	CustomerName    *string `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	CustomerEmail   *string `json:"customer_email,omitempty" validate:"omitempty,email"`
}
