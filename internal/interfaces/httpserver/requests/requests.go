package requests

// Fallbacks for optional query parameters.
const (
	DefaultUserID           = "default"
	DefaultAssistantMessage = "Hello"
	DefaultExportFormat     = "json"
)

// ChatStreamRequest is the query binding for the chat streaming endpoint.
type ChatStreamRequest struct {
	Message        string `form:"message" binding:"required"`
	UserID         string `form:"userId"`
	ConversationID string `form:"conversationId"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *ChatStreamRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// WebSearchRequest is the query binding for the search streaming endpoint.
type WebSearchRequest struct {
	Query          string `form:"query" binding:"required"`
	UserID         string `form:"userId"`
	ConversationID string `form:"conversationId"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *WebSearchRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// UploadFileRequest is the form binding for the upload endpoint. The file
// part itself is read from the multipart form.
type UploadFileRequest struct {
	Message        string `form:"message"`
	UserID         string `form:"userId"`
	ConversationID string `form:"conversationId"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *UploadFileRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// AssistantRequest is the query binding for the one-shot assistant endpoint.
type AssistantRequest struct {
	Message string `form:"message"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *AssistantRequest) ApplyDefaults() {
	if r.Message == "" {
		r.Message = DefaultAssistantMessage
	}
}

// UserQuery scopes an operation to a user.
type UserQuery struct {
	UserID string `form:"userId"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *UserQuery) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// CreateConversationRequest is the query binding for conversation creation.
// An omitted title gets the domain default.
type CreateConversationRequest struct {
	UserID string `form:"userId"`
	Title  string `form:"title"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *CreateConversationRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// UpdateConversationRequest is the query binding for partial conversation
// updates. Nil fields are left untouched.
type UpdateConversationRequest struct {
	UserID   string  `form:"userId"`
	Title    *string `form:"title"`
	Archived *bool   `form:"archived"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *UpdateConversationRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// ExportConversationRequest is the query binding for conversation export.
type ExportConversationRequest struct {
	UserID string `form:"userId"`
	Format string `form:"format"`
}

// ApplyDefaults fills omitted optional parameters.
func (r *ExportConversationRequest) ApplyDefaults() {
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
	if r.Format == "" {
		r.Format = DefaultExportFormat
	}
}

// UpdateProfileRequest is the JSON body for profile replacement.
type UpdateProfileRequest struct {
	DisplayName string         `json:"displayName" binding:"omitempty,max=100"`
	Email       string         `json:"email" binding:"omitempty,email"`
	Theme       string         `json:"theme" binding:"omitempty,oneof=light dark"`
	Preferences map[string]any `json:"preferences"`
}
