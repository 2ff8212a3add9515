package config

// APIConfig holds the two chat API hosts. Host serves the login,
// register and document-chat endpoints; CustomHost serves the two
// model-chat endpoints.
type APIConfig struct {
	Host       string `koanf:"host" json:"host" yaml:"host"`
	CustomHost string `koanf:"custom_host" json:"custom_host" yaml:"custom_host"`
}

// DocAPIConfig points at the document service (upload, direct chat,
// history). Base is joined onto Host when building request URLs.
type DocAPIConfig struct {
	Host string `koanf:"host" json:"host" yaml:"host"`
	Base string `koanf:"base" json:"base" yaml:"base"`
}

// Chatbot is one selectable persona. ID is the declared numeric id
// shown to the user; BotID is the backend routing id sent with every
// chat request.
type Chatbot struct {
	ID      int    `koanf:"id" json:"id" yaml:"id"`
	BotID   string `koanf:"bot_id" json:"bot_id" yaml:"bot_id"`
	Name    string `koanf:"name" json:"name" yaml:"name"`
	Image   string `koanf:"image" json:"image" yaml:"image"`
	Primary string `koanf:"primary" json:"primary" yaml:"primary"`
}

// Config is the process-wide configuration. It is loaded once at
// command startup and read-only afterwards.
type Config struct {
	API      APIConfig    `koanf:"api" json:"api" yaml:"api"`
	DocAPI   DocAPIConfig `koanf:"doc_api" json:"doc_api" yaml:"doc_api"`
	Firebase Firebase     `koanf:"firebase" json:"firebase" yaml:"firebase"`
	Chatbots []Chatbot    `koanf:"chatbots" json:"chatbots" yaml:"chatbots"`
}

// Firebase identifies the identity-provider project used by the auth
// gateway.
type Firebase struct {
	APIKey    string `koanf:"api_key" json:"api_key" yaml:"api_key"`
	ProjectID string `koanf:"project_id" json:"project_id" yaml:"project_id"`
}

// PersonaAt returns the persona stored at the given selection index.
// Out-of-range indexes fall back to the first persona.
func (c *Config) PersonaAt(index int) Chatbot {
	if len(c.Chatbots) == 0 {
		return Chatbot{}
	}
	if index < 0 || index >= len(c.Chatbots) {
		return c.Chatbots[0]
	}
	return c.Chatbots[index]
}

// PersonaByID returns the persona with the given declared id.
func (c *Config) PersonaByID(id int) (Chatbot, bool) {
	for _, b := range c.Chatbots {
		if b.ID == id {
			return b, true
		}
	}
	return Chatbot{}, false
}
