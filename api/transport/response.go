package transport

// Message is the body of acknowledgements and every error response.
type Message struct {
	Message string `json:"message"`
}

func NewMessage(message string) Message {
	return Message{Message: message}
}

// Token is returned by a successful login.
type Token struct {
	Token string `json:"token"`
}

// Health reports dependency state for the /health endpoint.
type Health struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}
