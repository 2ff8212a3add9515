package config

// Default returns the built-in configuration used when no config file
// can be read. The hosts mirror the deployed defaults; the persona
// list is empty until a config file provides one.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Host:       "https://chatbot-api-g88f.onrender.com/chat",
			CustomHost: "https://7128-113-160-170-187.ngrok-free.app/chat",
		},
		DocAPI: DocAPIConfig{
			Host: "http://localhost:8000",
			Base: "/api/v1",
		},
		Firebase: Firebase{
			ProjectID: "chatbotgents",
		},
		Chatbots: nil,
	}
}
