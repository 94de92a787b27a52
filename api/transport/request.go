package transport

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TaskCreateRequest struct {
	Title string `json:"title"`
}

// TaskUpdateRequest is a partial update; absent fields stay nil.
type TaskUpdateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// ProfileUpdateRequest only carries the name; other profile fields are not
// client-editable and are ignored when present.
type ProfileUpdateRequest struct {
	Name string `json:"name"`
}
