package models

// Setting maps to the `setting` table (single-row config table).
type Setting struct {
	AutoGenStatus string `gorm:"column:auto_gen_status;size:20" json:"auto_gen_status"`
}

func (Setting) TableName() string {
	return "setting"
}

// APIResponse is the JSON envelope returned by every admin API endpoint.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// PaginatedResponse wraps a list payload with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}
