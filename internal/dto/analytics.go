package dto

// TimelineQuery captures the ?days= parameter of timeline endpoints. Zero
// selects the configured default window.
type TimelineQuery struct {
	Days int `form:"days" validate:"omitempty,min=1"`
}

// WarmYearReviewRequest is the POST /admin/year-review/warm payload. An empty
// list warms every user with activity in the review window.
type WarmYearReviewRequest struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,max=1000,dive,required,max=64"`
}
